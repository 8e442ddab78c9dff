// Package report renders the tracker's screens: the startup banner, the market header, the
// indices table, the insights table and the market summary.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ensigniasec/run-ticker/internal/insights"
	"github.com/ensigniasec/run-ticker/internal/market"
	"github.com/ensigniasec/run-ticker/internal/settings"
)

const clearSequence = "\x1b[H\x1b[2J"

// ClearScreen moves the cursor home and clears the terminal.
func ClearScreen(w io.Writer) {
	_, _ = io.WriteString(w, clearSequence)
}

// Number formats a float without trailing zeros.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Banner prints the startup summary of the active settings.
func Banner(w io.Writer, v settings.Values) {
	ai := "DISABLED"
	if v.AIEnabled {
		ai = "ENABLED"
	}
	fmt.Fprintln(w, BannerStyle.Render("[LAUNCH] Starting Stock Market Tracker"))
	fmt.Fprintf(w, "  - Refresh interval: %d minute(s)\n", v.Interval)
	fmt.Fprintf(w, "  - Alert threshold: %s%%\n", Number(v.Threshold))
	fmt.Fprintf(w, "  - AI-powered insights: %s\n", ai)
	fmt.Fprintln(w, "  - Press 'm' at any time to open the settings menu")
	fmt.Fprintln(w)
}

// Header prints the title block shown above every refresh.
func Header(w io.Writer, v settings.Values) {
	ai := "OFF"
	if v.AIEnabled {
		ai = "ON"
	}
	fmt.Fprintln(w, BannerStyle.Render("STOCK MARKET TRACKER"))
	fmt.Fprintf(w, "Alert Threshold: %s%% | Refresh: %d min | AI: %s\n", Number(v.Threshold), v.Interval, ai)
	fmt.Fprintln(w, "Press 'm' to open settings menu")
	fmt.Fprintln(w)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		BorderStyle(HintStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func signedPct(d float64, text string) string {
	if d >= 0 && !strings.HasPrefix(text, "+") {
		text = "+" + text
	}
	return Signed(d, text+"%")
}

// Catalog prints the tracked indices without quotes.
func Catalog(w io.Writer, c market.Catalog) {
	t := newTable("Country", "Index", "Ticker")
	for _, idx := range c.Indices {
		t.Row(idx.Country, idx.Name, idx.Ticker)
	}
	fmt.Fprintln(w, t.String())
}

// Indices prints the quote table.
func Indices(w io.Writer, quotes []market.Quote) {
	if len(quotes) == 0 {
		fmt.Fprintln(w, HintStyle.Render("No market data available."))
		return
	}
	t := newTable("Country", "Index", "Current Value", "% Change")
	for _, q := range quotes {
		t.Row(q.Country, q.Name, q.Value.StringFixed(2), signedPct(q.ChangePct(), q.Change.String()))
	}
	fmt.Fprintln(w, t.String())
}

func formatPrediction(p *insights.Prediction) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (conf: %s%%)", signedPct(p.ChangePct, Number(p.ChangePct)), Number(p.Confidence))
}

func formatTrend(t *insights.Trend) string {
	if t == nil {
		return "N/A"
	}
	style := UpStyle
	switch t.Label() {
	case "Strong Uptrend":
		style = StrongUp
	case "Slight Downtrend":
		style = DownStyle
	case "Strong Downtrend":
		style = StrongDown
	}
	return fmt.Sprintf("%s (%s%%)", style.Render(t.Label()), Number(t.ForecastPct))
}

func formatSentiment(s *insights.Sentiment) string {
	if s == nil {
		return "N/A"
	}
	style := UpStyle
	switch s.Label() {
	case "Very Positive":
		style = StrongUp
	case "Negative":
		style = DownStyle
	case "Very Negative":
		style = StrongDown
	}
	return fmt.Sprintf("%s (%s)", style.Render(s.Label()), Number(s.Score))
}

// Insights prints the per-index prediction, trend and sentiment table.
func Insights(w io.Writer, in []insights.Insight) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("AI MARKET INSIGHTS"))
	t := newTable("Country", "Index", "Current", "Change", "Prediction", "Trend", "Sentiment")
	for _, i := range in {
		t.Row(
			i.Country,
			i.Name,
			i.Value.StringFixed(2),
			signedPct(i.ChangePct(), i.Change.String()),
			formatPrediction(i.Prediction),
			formatTrend(i.Trend),
			formatSentiment(i.Sentiment),
		)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, NoteStyle.Render("Note: Predictions are based on historical data and should not be used as financial advice."))
}

// Summary prints the natural-language market summary.
func Summary(w io.Writer, s insights.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("MARKET SUMMARY:"))
	if s.Total == 0 {
		fmt.Fprintln(w, "No market data available for analysis.")
		return
	}

	switch s.Breadth {
	case insights.BreadthPositive:
		fmt.Fprintln(w, UpStyle.Render(fmt.Sprintf("Markets are broadly positive today with %d of %d indices trading higher.", s.Up, s.Total)))
	case insights.BreadthNegative:
		fmt.Fprintln(w, DownStyle.Render(fmt.Sprintf("Markets are broadly negative today with %d of %d indices trading lower.", s.Down, s.Total)))
	default:
		fmt.Fprintf(w, "Markets are mixed today with %d indices up and %d down.\n", s.Up, s.Down)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, NoteStyle.Render("Biggest movers:"))
	for _, m := range s.Movers {
		fmt.Fprintf(w, "- %s (%s): %s\n", m.Name, m.Country, Signed(m.ChangePct(), m.Change.String()+"%"))
	}

	switch s.Mood {
	case insights.MoodPositive:
		fmt.Fprintln(w)
		fmt.Fprintln(w, UpStyle.Render("News sentiment is generally positive across markets."))
	case insights.MoodNegative:
		fmt.Fprintln(w)
		fmt.Fprintln(w, DownStyle.Render("News sentiment is generally negative across markets."))
	case insights.MoodNeutral:
		fmt.Fprintln(w)
		fmt.Fprintln(w, "News sentiment is neutral to mixed across markets.")
	case insights.MoodNone:
	}

	fmt.Fprintln(w)
	switch s.Outlook {
	case insights.OutlookPositive:
		fmt.Fprintln(w, UpStyle.Render("AI models predict positive movement for most markets tomorrow."))
	case insights.OutlookNegative:
		fmt.Fprintln(w, DownStyle.Render("AI models predict continued pressure on most markets tomorrow."))
	default:
		fmt.Fprintln(w, "AI models predict mixed market performance tomorrow.")
	}
}
