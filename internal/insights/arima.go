package insights

import (
	"fmt"
	"math"
)

const (
	arOrder        = 5
	minTrendCloses = 60
	// TrendSteps is the forecast horizon in sessions.
	TrendSteps = 5
)

// ForecastTrend fits an ARIMA(5,1,0) model without a constant to closes (oldest first), forecasts
// TrendSteps sessions ahead and reports the move from the last close to the final forecast as a
// percentage rounded to two places.
func ForecastTrend(closes []float64) (Trend, error) {
	if len(closes) < minTrendCloses {
		return Trend{}, fmt.Errorf("%w: %d closes", ErrInsufficientData, len(closes))
	}
	last := closes[len(closes)-1]
	if last == 0 {
		return Trend{}, fmt.Errorf("%w: zero close", ErrDegenerate)
	}

	diffs := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		diffs[i-1] = closes[i] - closes[i-1]
	}

	phi, err := fitAR(diffs, arOrder)
	if err != nil {
		return Trend{}, err
	}

	forecast := forecastLevels(closes, diffs, phi, TrendSteps)
	end := forecast[len(forecast)-1]
	if math.IsNaN(end) || math.IsInf(end, 0) {
		return Trend{}, fmt.Errorf("%w: unstable forecast", ErrDegenerate)
	}
	return Trend{ForecastPct: round((end-last)/last*100, 2)}, nil
}

// fitAR estimates d[t] = sum_j phi[j]*d[t-1-j] by conditional least squares.
func fitAR(d []float64, p int) ([]float64, error) {
	rows := len(d) - p
	if rows <= p {
		return nil, fmt.Errorf("%w: %d differences for order %d", ErrInsufficientData, len(d), p)
	}
	x := make([][]float64, rows)
	y := make([]float64, rows)
	for t := p; t < len(d); t++ {
		lags := make([]float64, p)
		for j := range p {
			lags[j] = d[t-1-j]
		}
		x[t-p] = lags
		y[t-p] = d[t]
	}
	return leastSquares(x, y, false)
}

// forecastLevels integrates recursive difference forecasts back onto the last level.
func forecastLevels(levels, diffs, phi []float64, steps int) []float64 {
	hist := append([]float64(nil), diffs...)
	level := levels[len(levels)-1]
	out := make([]float64, steps)
	for s := range steps {
		var next float64
		for j, c := range phi {
			next += c * hist[len(hist)-1-j]
		}
		hist = append(hist, next)
		level += next
		out[s] = level
	}
	return out
}
