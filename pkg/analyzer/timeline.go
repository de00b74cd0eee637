package analyzer

import (
	"context"
	"sort"
	"time"

	"github.com/ccollicutt/chatstat/pkg/table"
)

// TimelineEngine counts messages per month and per day.
type TimelineEngine struct {
	monthly map[string]int
	daily   map[string]int
}

// NewTimelineEngine creates a new timeline engine.
func NewTimelineEngine() *TimelineEngine {
	e := &TimelineEngine{}
	e.Reset()
	return e
}

func (e *TimelineEngine) Name() string { return "timeline" }
func (e *TimelineEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *TimelineEngine) Process(_ context.Context, m *table.Message) error {
	if m.IsNotification() {
		return nil
	}
	e.monthly[m.Timestamp.Format("2006-01")]++
	e.daily[m.OnlyDate.Format(time.DateOnly)]++
	return nil
}

// Finalize writes the timeline record.
func (e *TimelineEngine) Finalize(_ context.Context, r *Results) error {
	r.Timeline = &TimelineResult{
		Monthly: chronological(e.monthly),
		Daily:   chronological(e.daily),
	}
	return nil
}

// Reset clears internal state for reuse.
func (e *TimelineEngine) Reset() {
	e.monthly = make(map[string]int)
	e.daily = make(map[string]int)
}

// chronological sorts period labels; ISO-style labels sort by time.
func chronological(counts map[string]int) []PeriodCount {
	out := make([]PeriodCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PeriodCount{Period: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// weekdays lists day names Monday first.
var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ActivityEngine records when messages are sent.
type ActivityEngine struct {
	hours   [24]int
	week    [7]int
	months  [12]int
	heatmap [7][24]int
}

// NewActivityEngine creates a new activity engine.
func NewActivityEngine() *ActivityEngine {
	return &ActivityEngine{}
}

func (e *ActivityEngine) Name() string { return "activity" }
func (e *ActivityEngine) Scope() Scope { return ScopeUser }

// Process handles a single row.
func (e *ActivityEngine) Process(_ context.Context, m *table.Message) error {
	if m.IsNotification() {
		return nil
	}
	day := mondayIndex(m.Timestamp.Weekday())
	e.hours[m.Hour]++
	e.week[day]++
	e.months[m.MonthNum-1]++
	e.heatmap[day][m.Hour]++
	return nil
}

// Finalize writes the activity record.
func (e *ActivityEngine) Finalize(_ context.Context, r *Results) error {
	res := &ActivityResult{
		Hours:   e.hours,
		Week:    make([]PeriodCount, 7),
		Months:  make([]PeriodCount, 12),
		Heatmap: make([]HeatmapRow, 7),
	}

	best := 0
	for i, d := range weekdays {
		res.Week[i] = PeriodCount{Period: d.String(), Count: e.week[i]}
		res.Heatmap[i] = HeatmapRow{Day: d.String(), Periods: e.heatmap[i]}
		if e.week[i] > best {
			best = e.week[i]
			res.BusiestDay = d.String()
		}
	}

	best = 0
	for i := range e.months {
		name := time.Month(i + 1).String()
		res.Months[i] = PeriodCount{Period: name, Count: e.months[i]}
		if e.months[i] > best {
			best = e.months[i]
			res.BusiestMonth = name
		}
	}

	best = 0
	for h, c := range e.hours {
		if c > best {
			best = c
			res.BusiestHour = h
		}
	}

	r.Activity = res
	return nil
}

// Reset clears internal state for reuse.
func (e *ActivityEngine) Reset() {
	*e = ActivityEngine{}
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
