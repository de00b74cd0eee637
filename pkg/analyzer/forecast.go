package analyzer

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// ForecastEngine fits a least-squares line through daily message counts
// and extends it a number of days past the last message.
type ForecastEngine struct {
	days int

	counts      map[time.Time]int
	first, last time.Time
}

// NewForecastEngine creates a new forecast engine predicting days ahead.
func NewForecastEngine(days int) *ForecastEngine {
	e := &ForecastEngine{days: days}
	e.Reset()
	return e
}

func (e *ForecastEngine) Name() string { return "forecast" }
func (e *ForecastEngine) Scope() Scope { return ScopeChat }

// Process handles a single row.
func (e *ForecastEngine) Process(_ context.Context, m *table.Message) error {
	if m.IsNotification() {
		return nil
	}
	d := m.OnlyDate
	e.counts[d]++
	if e.first.IsZero() || d.Before(e.first) {
		e.first = d
	}
	if d.After(e.last) {
		e.last = d
	}
	return nil
}

// Finalize writes the forecast record.
func (e *ForecastEngine) Finalize(_ context.Context, r *Results) error {
	res := &ForecastResult{Predictions: make([]DailyPrediction, 0, e.days)}
	r.Forecast = res
	if len(e.counts) == 0 {
		return nil
	}

	// Zero-filled daily series from the first to the last day
	var ys []float64
	for d := e.first; !d.After(e.last); d = d.AddDate(0, 0, 1) {
		ys = append(ys, float64(e.counts[d]))
	}
	slope, intercept := leastSquares(ys)

	res.HistoryDays = len(ys)
	res.Slope = round(slope, 4)
	res.Intercept = round(intercept, 4)
	res.HistoricalDailyAvg = round(mean(ys), 2)

	var preds []float64
	for k := 1; k <= e.days; k++ {
		x := float64(len(ys) - 1 + k)
		y := math.Max(0, intercept+slope*x)
		preds = append(preds, y)
		res.Predictions = append(res.Predictions, DailyPrediction{
			Date:     e.last.AddDate(0, 0, k).Format(time.DateOnly),
			Messages: round(y, 2),
		})
	}
	res.PredictedDailyAvg = round(mean(preds), 2)
	if hist := mean(ys); hist > 0 && len(preds) > 0 {
		res.ChangePercent = round((mean(preds)-hist)/hist*100, 2)
	}
	return nil
}

// leastSquares fits y = intercept + slope*x for x = 0..n-1.
func leastSquares(ys []float64) (slope, intercept float64) {
	if len(ys) < 2 {
		return 0, mean(ys)
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}

// Reset clears internal state for reuse.
func (e *ForecastEngine) Reset() {
	e.counts = make(map[time.Time]int)
	e.first, e.last = time.Time{}, time.Time{}
}
