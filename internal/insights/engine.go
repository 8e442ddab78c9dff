package insights

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ensigniasec/run-ticker/internal/market"
)

const (
	historyDays    = 120
	predictionDays = 60
	defaultWorkers = 4
)

// HistorySource supplies daily bars and headlines.
type HistorySource interface {
	History(ctx context.Context, ticker string, days int) ([]market.Bar, error)
	News(ctx context.Context, ticker string, n int) ([]market.Headline, error)
}

// Engine computes insights for a set of quotes.
type Engine struct {
	src     HistorySource
	workers int
}

// EngineOption mutates Engine configuration.
type EngineOption func(*Engine)

// WithWorkers bounds how many tickers are analyzed concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEngine(src HistorySource, opts ...EngineOption) *Engine {
	e := &Engine{src: src, workers: defaultWorkers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze returns one Insight per quote, in input order. Parts that cannot be computed are
// left nil and logged at debug level.
func (e *Engine) Analyze(ctx context.Context, quotes []market.Quote) []Insight {
	out := make([]Insight, len(quotes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, q := range quotes {
		out[i] = Insight{Quote: q}
		g.Go(func() error {
			e.analyzeOne(gctx, &out[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Engine) analyzeOne(ctx context.Context, in *Insight) {
	log := logrus.WithField("ticker", in.Ticker)

	bars, err := e.src.History(ctx, in.Ticker, historyDays)
	if err != nil {
		log.Debugf("history unavailable: %v", err)
	} else {
		if p, err := PredictNextDay(lastDays(bars, predictionDays)); err != nil {
			log.Debugf("prediction skipped: %v", err)
		} else {
			current := in.Value.InexactFloat64()
			if current != 0 {
				p.ChangePct = round((p.NextValue-current)/current*100, 2)
			}
			in.Prediction = &p
		}

		closes := make([]float64, len(bars))
		for j, b := range bars {
			closes[j] = b.Close
		}
		if t, err := ForecastTrend(closes); err != nil {
			log.Debugf("trend skipped: %v", err)
		} else {
			in.Trend = &t
		}
	}

	news, err := e.src.News(ctx, in.Ticker, RecentHeadlines)
	if err != nil {
		log.Debugf("news unavailable: %v", err)
		return
	}
	if s, ok := AnalyzeHeadlines(news); ok {
		in.Sentiment = &s
	}
}

// lastDays keeps the bars within days calendar days of the newest bar.
func lastDays(bars []market.Bar, days int) []market.Bar {
	if len(bars) == 0 {
		return bars
	}
	cutoff := bars[len(bars)-1].Time.Add(-time.Duration(days) * 24 * time.Hour)
	for i, b := range bars {
		if b.Time.After(cutoff) {
			return bars[i:]
		}
	}
	return nil
}
