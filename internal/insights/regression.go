package insights

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/ensigniasec/run-ticker/internal/market"
)

const (
	minPredictionBars = 30
	minPredictionRows = 20
	ridge             = 1e-8
)

// PredictNextDay fits an ordinary least squares model of the next session's return on the
// standardized Open, High, Low, Close, Volume and Return of the current session, and applies it to
// the most recent bar. Confidence is the in-sample R^2 as a percentage, rounded to one place.
func PredictNextDay(bars []market.Bar) (Prediction, error) {
	if len(bars) < minPredictionBars {
		return Prediction{}, fmt.Errorf("%w: %d bars", ErrInsufficientData, len(bars))
	}

	features := make([][]float64, 0, len(bars))
	returns := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			return Prediction{}, fmt.Errorf("%w: zero close", ErrDegenerate)
		}
		returns[i] = (bars[i].Close - prev) / prev
	}
	for i := 1; i < len(bars); i++ {
		b := bars[i]
		features = append(features, []float64{b.Open, b.High, b.Low, b.Close, b.Volume, returns[i]})
	}

	// Row j of features is session j+1; its target is the return of session j+2.
	rows := len(features) - 1
	if rows < minPredictionRows {
		return Prediction{}, fmt.Errorf("%w: %d rows", ErrInsufficientData, rows)
	}
	targets := returns[2:]

	scaled, err := standardize(features, rows)
	if err != nil {
		return Prediction{}, err
	}

	beta, err := leastSquares(scaled[:rows], targets, true)
	if err != nil {
		return Prediction{}, err
	}

	fitted := make([]float64, rows)
	for i := range rows {
		fitted[i] = predictRow(beta, scaled[i])
	}
	r2 := rSquared(targets, fitted)

	next := predictRow(beta, scaled[rows])
	last := bars[len(bars)-1].Close
	return Prediction{
		NextValue:  round(last*(1+next), 2),
		Confidence: round(r2*100, 1),
	}, nil
}

func predictRow(beta []float64, row []float64) float64 {
	y := beta[0]
	for j, x := range row {
		y += beta[j+1] * x
	}
	return y
}

// standardize scales each column to zero mean and unit population variance, using the first fit
// rows for the moments. Constant columns become zero.
func standardize(rows [][]float64, fit int) ([][]float64, error) {
	if len(rows) == 0 || fit < 1 || fit > len(rows) {
		return nil, ErrInsufficientData
	}
	cols := len(rows[0])
	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = make([]float64, cols)
	}
	col := make([]float64, fit)
	for j := range cols {
		for i, r := range rows[:fit] {
			col[i] = r[j]
		}
		mean, err := stats.Mean(col)
		if err != nil {
			return nil, err
		}
		sd, err := stats.StandardDeviationPopulation(col)
		if err != nil {
			return nil, err
		}
		if sd == 0 || math.IsNaN(sd) {
			continue
		}
		for i := range rows {
			out[i][j] = (rows[i][j] - mean) / sd
		}
	}
	return out, nil
}

// leastSquares solves the normal equations with a tiny ridge term so collinear price columns
// stay solvable. With intercept set, the first coefficient is the constant.
func leastSquares(x [][]float64, y []float64, intercept bool) ([]float64, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("%w: %d rows for %d targets", ErrInsufficientData, n, len(y))
	}
	offset := 0
	if intercept {
		offset = 1
	}
	k := len(x[0]) + offset

	design := mat.NewDense(n, k, nil)
	for i, row := range x {
		if intercept {
			design.Set(i, 0, 1)
		}
		for j, v := range row {
			design.Set(i, j+offset, v)
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var gram mat.SymDense
	gram.SymOuterK(1, design.T())
	for j := offset; j < k; j++ {
		gram.SetSym(j, j, gram.At(j, j)+ridge)
	}
	var xty mat.VecDense
	xty.MulVec(design.T(), target)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, fmt.Errorf("%w: normal equations not positive definite", ErrDegenerate)
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		// An ill-conditioned system still yields a usable solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
	}
	return beta.RawVector().Data, nil
}

func rSquared(actual, fitted []float64) float64 {
	mean, err := stats.Mean(actual)
	if err != nil {
		return 0
	}
	var ssRes, ssTot float64
	for i, a := range actual {
		ssRes += (a - fitted[i]) * (a - fitted[i])
		ssTot += (a - mean) * (a - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func round(v float64, places int) float64 {
	r, err := stats.Round(v, places)
	if err != nil {
		return v
	}
	return r
}
