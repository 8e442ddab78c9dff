// Package insights derives next-day predictions, short-term trends and headline sentiment for
// each quoted index, and condenses them into a market summary.
package insights

import (
	"errors"

	"github.com/ensigniasec/run-ticker/internal/market"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrDegenerate       = errors.New("degenerate series")
)

// Prediction is a linear-regression estimate of the next session's close.
type Prediction struct {
	NextValue  float64 `json:"next_day_value"`
	ChangePct  float64 `json:"predicted_change"`
	Confidence float64 `json:"confidence"` // in-sample R^2, as a percentage
}

// Trend is an autoregressive forecast of the move over the next few sessions.
type Trend struct {
	ForecastPct float64 `json:"forecast"`
}

// Direction is "up" for a positive forecast and "down" otherwise.
func (t Trend) Direction() string {
	if t.ForecastPct > 0 {
		return "up"
	}
	return "down"
}

// Strength is the magnitude of the forecast.
func (t Trend) Strength() float64 {
	if t.ForecastPct < 0 {
		return -t.ForecastPct
	}
	return t.ForecastPct
}

// Label classifies the forecast.
func (t Trend) Label() string {
	switch {
	case t.ForecastPct > strongTrendPct:
		return "Strong Uptrend"
	case t.ForecastPct > 0:
		return "Slight Uptrend"
	case t.ForecastPct > -strongTrendPct:
		return "Slight Downtrend"
	default:
		return "Strong Downtrend"
	}
}

// ScoredHeadline is a headline with its polarity.
type ScoredHeadline struct {
	market.Headline
	Sentiment float64 `json:"sentiment"`
}

// Sentiment is the mean polarity of recent headlines.
type Sentiment struct {
	Score     float64          `json:"score"`
	Strength  float64          `json:"strength"`
	Headlines []ScoredHeadline `json:"headlines"`
}

// Label classifies the score.
func (s Sentiment) Label() string {
	switch {
	case s.Score > strongSentiment:
		return "Very Positive"
	case s.Score > 0:
		return "Positive"
	case s.Score > -strongSentiment:
		return "Negative"
	default:
		return "Very Negative"
	}
}

// Insight bundles whatever could be computed for one quote. Nil parts were unavailable.
type Insight struct {
	market.Quote
	Prediction *Prediction `json:"prediction,omitempty"`
	Trend      *Trend      `json:"trend,omitempty"`
	Sentiment  *Sentiment  `json:"sentiment,omitempty"`
}

const (
	strongTrendPct  = 1.5
	strongSentiment = 0.3
)
