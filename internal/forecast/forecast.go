// Package forecast projects monthly income and expense with a straight-line
// trend fitted by ordinary least squares.
package forecast

import (
	"fmt"
	"math"

	"finboard/internal/aggregate"
	"finboard/internal/core"
)

const (
	DefaultHorizon = 6
	// MinMonths is the smallest series a line can be fitted to.
	MinMonths = 2
)

// Line is amount = Intercept + Slope*index, in cents.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line at index x.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// Fit computes the least-squares line through (i, ys[i]).
func Fit(ys []float64) (Line, error) {
	n := len(ys)
	if n < MinMonths {
		return Line{}, &core.InsufficientDataError{Months: n, Required: MinMonths}
	}
	var sumX, sumY float64
	for i, y := range ys {
		sumX += float64(i)
		sumY += y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxy, sxx float64
	for i, y := range ys {
		dx := float64(i) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}
	// sxx > 0 whenever n >= 2 since indices are distinct.
	slope := sxy / sxx
	return Line{Intercept: meanY - slope*meanX, Slope: slope}, nil
}

// Point is one month of the forecast chart. Actual points carry observed
// sums; predicted points carry values read off the fitted lines.
type Point struct {
	Month     core.Month `json:"-"`
	Label     string     `json:"label"`
	Income    core.Money `json:"income"`
	Expense   core.Money `json:"expense"`
	Predicted bool       `json:"predicted"`
}

// Result holds the observed and projected months plus the fitted models.
type Result struct {
	Horizon     int     `json:"horizon"`
	IncomeLine  Line    `json:"income_line"`
	ExpenseLine Line    `json:"expense_line"`
	Actual      []Point `json:"actual"`
	Predicted   []Point `json:"predicted"`
}

// Points returns actual points followed by predicted ones.
func (r Result) Points() []Point {
	out := make([]Point, 0, len(r.Actual)+len(r.Predicted))
	out = append(out, r.Actual...)
	return append(out, r.Predicted...)
}

// Forecast fits income and expense independently and projects h months past
// the last observed month. Both series must cover the same contiguous months.
// Predictions are not clamped and may be negative.
func Forecast(income, expense aggregate.MonthlySeries, h int) (Result, error) {
	if h < 1 {
		return Result{}, fmt.Errorf("%w: %d", core.ErrInvalidHorizon, h)
	}
	if err := sameMonths(income, expense); err != nil {
		return Result{}, err
	}
	n := income.Len()

	incomeLine, err := Fit(centsOf(income.Amounts))
	if err != nil {
		return Result{}, err
	}
	expenseLine, err := Fit(centsOf(expense.Amounts))
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Horizon:     h,
		IncomeLine:  incomeLine,
		ExpenseLine: expenseLine,
		Actual:      make([]Point, n),
		Predicted:   make([]Point, h),
	}
	for i, m := range income.Months {
		res.Actual[i] = Point{Month: m, Label: m.String(), Income: income.Amounts[i], Expense: expense.Amounts[i]}
	}
	last := income.Months[n-1]
	for k := 0; k < h; k++ {
		m := last.AddMonths(k + 1)
		x := float64(n + k)
		res.Predicted[k] = Point{
			Month:     m,
			Label:     m.String(),
			Income:    roundCents(incomeLine.At(x)),
			Expense:   roundCents(expenseLine.At(x)),
			Predicted: true,
		}
	}
	return res, nil
}

func sameMonths(a, b aggregate.MonthlySeries) error {
	if a.Len() != b.Len() || len(a.Amounts) != a.Len() || len(b.Amounts) != b.Len() {
		return fmt.Errorf("forecast: income has %d months, expense has %d", a.Len(), b.Len())
	}
	for i := range a.Months {
		if a.Months[i] != b.Months[i] {
			return fmt.Errorf("forecast: month %d differs: %s vs %s", i, a.Months[i], b.Months[i])
		}
		if i > 0 && a.Months[i] != a.Months[i-1].Next() {
			return fmt.Errorf("forecast: months not contiguous at %s", a.Months[i])
		}
	}
	return nil
}

func centsOf(ms []core.Money) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = float64(m.Cents)
	}
	return out
}

func roundCents(v float64) core.Money {
	return core.Money{Cents: int64(math.Round(v))}
}
