// Package alert flags indices whose move meets the user's threshold.
package alert

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ensigniasec/run-ticker/internal/market"
)

// Alert is a quote whose absolute change reached the threshold.
type Alert struct {
	market.Quote
	Threshold decimal.Decimal `json:"threshold"`
}

func (a Alert) String() string {
	return fmt.Sprintf("[ALERT]: %s (%s) changed by %s%%! (Threshold: %s%%)",
		a.Name, a.Country, a.Change.String(), a.Threshold.String())
}

// Check returns the quotes with |change| >= threshold, in input order.
func Check(quotes []market.Quote, threshold float64) []Alert {
	t := decimal.NewFromFloat(threshold)
	var out []Alert
	for _, q := range quotes {
		if q.Change.Abs().GreaterThanOrEqual(t) {
			out = append(out, Alert{Quote: q, Threshold: t})
		}
	}
	return out
}

// Print writes one line per alert.
func Print(w io.Writer, alerts []Alert) error {
	for _, a := range alerts {
		if _, err := fmt.Fprintln(w, a.String()); err != nil {
			return err
		}
	}
	return nil
}
