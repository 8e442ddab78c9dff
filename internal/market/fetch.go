package market

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// QuoteSource is the subset of Source used by FetchAll.
type QuoteSource interface {
	Quote(ctx context.Context, idx Index) (Quote, error)
}

const fetchConcurrency = 6

// FetchAll quotes every index in the catalog. Entries that fail are logged and omitted.
// The result is sorted by absolute percentage change, largest first.
func FetchAll(ctx context.Context, src QuoteSource, catalog Catalog) []Quote {
	slots := make([]*Quote, len(catalog.Indices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, idx := range catalog.Indices {
		g.Go(func() error {
			q, err := src.Quote(gctx, idx)
			if err != nil {
				logrus.WithFields(logrus.Fields{"ticker": idx.Ticker, "country": idx.Country}).Debugf("quote failed: %v", err)
				return nil
			}
			slots[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]Quote, 0, len(slots))
	for _, q := range slots {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	SortByMagnitude(quotes)
	return quotes
}

// SortByMagnitude orders quotes by absolute change, largest first. Ties keep catalog order.
func SortByMagnitude(quotes []Quote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Change.Abs().GreaterThan(quotes[j].Change.Abs())
	})
}
