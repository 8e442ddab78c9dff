package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const pricePlaces = 2

// Quote is the latest value of an index and its percentage change against the previous close.
type Quote struct {
	Index
	Value  decimal.Decimal `json:"current_value"`
	Change decimal.Decimal `json:"percentage_change"`
}

// ChangePct returns the percentage change as a float for numeric work.
func (q Quote) ChangePct() float64 { return q.Change.InexactFloat64() }

// Bar is one daily OHLCV row.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Headline is one news item attached to a ticker.
type Headline struct {
	Title     string    `json:"title"`
	Publisher string    `json:"publisher,omitempty"`
	Published time.Time `json:"published"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		PreviousClose      *float64 `json:"previousClose"`
		ChartPreviousClose *float64 `json:"chartPreviousClose"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

func (c *Client) chart(ctx context.Context, ticker, rng, interval string) (chartResult, error) {
	q := url.Values{}
	q.Set("range", rng)
	q.Set("interval", interval)
	var resp chartResponse
	if err := c.getJSON(ctx, "/v8/finance/chart/"+ticker, q, &resp); err != nil {
		return chartResult{}, err
	}
	if len(resp.Chart.Result) == 0 {
		return chartResult{}, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	return resp.Chart.Result[0], nil
}

// Quote returns the latest intraday value of idx and its change against the previous close,
// both rounded to two places.
func (c *Client) Quote(ctx context.Context, idx Index) (Quote, error) {
	res, err := c.chart(ctx, idx.Ticker, "1d", "1m")
	if err != nil {
		return Quote{}, err
	}

	var current *float64
	if qs := res.Indicators.Quote; len(qs) > 0 {
		// Trailing minutes can be null while the bar is still open.
		for i := len(qs[0].Close) - 1; i >= 0; i-- {
			if qs[0].Close[i] != nil {
				current = qs[0].Close[i]
				break
			}
		}
	}
	if current == nil {
		current = res.Meta.RegularMarketPrice
	}
	prev := res.Meta.PreviousClose
	if prev == nil {
		prev = res.Meta.ChartPreviousClose
	}
	if current == nil || prev == nil || *prev == 0 {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoData, idx.Ticker)
	}

	price := decimal.NewFromFloat(*current)
	base := decimal.NewFromFloat(*prev)
	change := price.Sub(base).Div(base).Mul(decimal.NewFromInt(100))
	return Quote{
		Index:  idx,
		Value:  price.Round(pricePlaces),
		Change: change.Round(pricePlaces),
	}, nil
}

// History returns up to days daily bars, oldest first. Rows with missing fields are skipped.
func (c *Client) History(ctx context.Context, ticker string, days int) ([]Bar, error) {
	res, err := c.chart(ctx, ticker, strconv.Itoa(days)+"d", "1d")
	if err != nil {
		return nil, err
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	q := res.Indicators.Quote[0]
	bars := make([]Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, h, l, cl, v := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i), at(q.Volume, i)
		if o == nil || h == nil || l == nil || cl == nil || v == nil {
			continue
		}
		bars = append(bars, Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *cl,
			Volume: *v,
		})
	}
	return bars, nil
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

// News returns up to n recent headlines for ticker. Items without a title are dropped.
func (c *Client) News(ctx context.Context, ticker string, n int) ([]Headline, error) {
	q := url.Values{}
	q.Set("q", ticker)
	q.Set("quotesCount", "0")
	q.Set("newsCount", strconv.Itoa(n))
	var resp searchResponse
	if err := c.getJSON(ctx, "/v1/finance/search", q, &resp); err != nil {
		return nil, err
	}
	out := make([]Headline, 0, len(resp.News))
	for _, item := range resp.News {
		if item.Title == "" {
			continue
		}
		out = append(out, Headline{
			Title:     item.Title,
			Publisher: item.Publisher,
			Published: time.Unix(item.ProviderPublishTime, 0).UTC(),
		})
		if len(out) == n {
			break
		}
	}
	return out, nil
}
