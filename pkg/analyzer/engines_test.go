package analyzer

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestStatsEngine(t *testing.T) {
	s := analyze(t, fixtureTable(t)).Results.Stats

	if s.Messages != 7 {
		t.Errorf("Messages = %d, want 7", s.Messages)
	}
	if s.Notifications != 2 {
		t.Errorf("Notifications = %d, want 2", s.Notifications)
	}
	if s.Media != 1 {
		t.Errorf("Media = %d, want 1", s.Media)
	}
	if s.Links != 1 {
		t.Errorf("Links = %d, want 1", s.Links)
	}
	// Media placeholders contribute no words
	if s.Words != 18 {
		t.Errorf("Words = %d, want 18", s.Words)
	}

	want := []string{"Alice", "Bob", "Carol"}
	for i, u := range s.PerUser {
		if u.User != want[i] {
			t.Errorf("PerUser[%d] = %s, want %s", i, u.User, want[i])
		}
	}
	if s.PerUser[1].Media != 1 || s.PerUser[1].Words != 7 {
		t.Errorf("Bob = %+v, want 1 media and 7 words", s.PerUser[1])
	}
}

func TestUsersEngine(t *testing.T) {
	u := analyze(t, fixtureTable(t)).Results.Users

	want := []UserShare{
		{User: "Alice", Messages: 3, Percent: 42.86},
		{User: "Bob", Messages: 3, Percent: 42.86},
		{User: "Carol", Messages: 1, Percent: 14.29},
	}
	if !reflect.DeepEqual(u.Busy, want) {
		t.Errorf("Busy = %+v, want %+v", u.Busy, want)
	}
}

func TestTypesEngine(t *testing.T) {
	got := *analyze(t, fixtureTable(t)).Results.Types
	want := TypesResult{Text: 3, Media: 1, Link: 1, Deleted: 1, EmojiOnly: 1, Notification: 2}
	if got != want {
		t.Errorf("Types = %+v, want %+v", got, want)
	}
}

func TestTimelineEngine(t *testing.T) {
	tl := analyze(t, fixtureTable(t)).Results.Timeline

	if !reflect.DeepEqual(tl.Monthly, []PeriodCount{{Period: "2023-01", Count: 7}}) {
		t.Errorf("Monthly = %+v", tl.Monthly)
	}
	wantDaily := []PeriodCount{
		{Period: "2023-01-02", Count: 4},
		{Period: "2023-01-03", Count: 2},
		{Period: "2023-01-04", Count: 1},
	}
	if !reflect.DeepEqual(tl.Daily, wantDaily) {
		t.Errorf("Daily = %+v, want %+v", tl.Daily, wantDaily)
	}
}

func TestActivityEngine(t *testing.T) {
	a := analyze(t, fixtureTable(t)).Results.Activity

	if a.Hours[10] != 4 || a.Hours[21] != 2 || a.Hours[8] != 1 {
		t.Errorf("Hours = %v", a.Hours)
	}
	if a.BusiestHour != 10 {
		t.Errorf("BusiestHour = %d, want 10", a.BusiestHour)
	}
	if a.BusiestDay != "Monday" {
		t.Errorf("BusiestDay = %q, want Monday", a.BusiestDay)
	}
	if a.BusiestMonth != "January" {
		t.Errorf("BusiestMonth = %q, want January", a.BusiestMonth)
	}
	if len(a.Week) != 7 || a.Week[0].Period != "Monday" || a.Week[6].Period != "Sunday" {
		t.Errorf("Week = %+v", a.Week)
	}
	if a.Week[1].Count != 2 {
		t.Errorf("Tuesday = %d, want 2", a.Week[1].Count)
	}
	if a.Heatmap[1].Periods[21] != 2 {
		t.Errorf("Heatmap Tuesday 21-22 = %d, want 2", a.Heatmap[1].Periods[21])
	}
}

func TestWordsEngine(t *testing.T) {
	w := analyze(t, fixtureTable(t)).Results.Words

	wantTop := []WordCount{
		{Word: "good", Count: 3},
		{Word: "morning", Count: 3},
		{Word: "day", Count: 1},
		{Word: "great", Count: 1},
		{Word: "hate", Count: 1},
		{Word: "rain", Count: 1},
	}
	if !reflect.DeepEqual(w.Top, wantTop) {
		t.Errorf("Top = %+v, want %+v", w.Top, wantTop)
	}
	if w.TotalWords != 14 {
		t.Errorf("TotalWords = %d, want 14", w.TotalWords)
	}
	if w.UniqueWords != 7 {
		t.Errorf("UniqueWords = %d, want 7", w.UniqueWords)
	}
	if w.WordsPerMessage != 2.8 {
		t.Errorf("WordsPerMessage = %v, want 2.8", w.WordsPerMessage)
	}
	if w.MaxLength != 38 || w.LongestUser != "Bob" {
		t.Errorf("MaxLength = %d by %s, want 38 by Bob", w.MaxLength, w.LongestUser)
	}
	if w.MinLength != 2 {
		t.Errorf("MinLength = %d, want 2", w.MinLength)
	}
	if w.AvgLength != 16.6 {
		t.Errorf("AvgLength = %v, want 16.6", w.AvgLength)
	}
}

func TestWordsEngine_TopLimit(t *testing.T) {
	ctx := context.Background()
	e := NewWordsEngine(2, nil)
	r := &Results{}
	for _, m := range fixtureTable(t).Rows() {
		if err := e.Process(ctx, &m); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Finalize(ctx, r); err != nil {
		t.Fatal(err)
	}
	if len(r.Words.Top) != 2 {
		t.Errorf("Top = %v, want 2 entries", r.Words.Top)
	}
}

func TestEmojiEngine(t *testing.T) {
	e := analyze(t, fixtureTable(t)).Results.Emoji

	if e.Total != 3 || e.Unique != 2 {
		t.Errorf("Total = %d, Unique = %d, want 3 and 2", e.Total, e.Unique)
	}
	if e.Density != 0.6 {
		t.Errorf("Density = %v, want 0.6", e.Density)
	}
	wantTop := []EmojiCount{{Emoji: "😂", Count: 2}, {Emoji: "😊", Count: 1}}
	if !reflect.DeepEqual(e.Top, wantTop) {
		t.Errorf("Top = %+v, want %+v", e.Top, wantTop)
	}
	if len(e.PerUser) != 2 || e.PerUser[0].User != "Carol" || e.PerUser[0].Total != 2 {
		t.Errorf("PerUser = %+v", e.PerUser)
	}
}

func TestSentimentEngine(t *testing.T) {
	s := analyze(t, fixtureTable(t)).Results.Sentiment

	if s.Positive != 4 || s.Negative != 1 || s.Neutral != 0 {
		t.Errorf("counts = %d/%d/%d, want 4/0/1", s.Positive, s.Neutral, s.Negative)
	}
	if s.MostNegative == nil || s.MostNegative.Message != "I hate rain" {
		t.Errorf("MostNegative = %+v", s.MostNegative)
	}
	if s.MostPositive == nil || s.MostPositive.Score < positiveThreshold || s.MostPositive.Message == "I hate rain" {
		t.Errorf("MostPositive = %+v", s.MostPositive)
	}
	if s.MostNegativeUser != "Alice" {
		t.Errorf("MostNegativeUser = %s, want Alice", s.MostNegativeUser)
	}
	if s.MostPositiveUser != "Bob" && s.MostPositiveUser != "Carol" {
		t.Errorf("MostPositiveUser = %s, want Bob or Carol", s.MostPositiveUser)
	}
	if !reflect.DeepEqual(s.MoodLifters, []UserCount{{User: "Carol", Count: 1}}) {
		t.Errorf("MoodLifters = %+v", s.MoodLifters)
	}
	if !reflect.DeepEqual(s.MoodDampeners, []UserCount{{User: "Alice", Count: 1}}) {
		t.Errorf("MoodDampeners = %+v", s.MoodDampeners)
	}
	if len(s.Monthly) != 1 || s.Monthly[0].Messages != 5 {
		t.Errorf("Monthly = %+v", s.Monthly)
	}
	if len(s.PerUser) != 3 || s.PerUser[0].User != "Alice" || s.PerUser[0].NegativePct != 50 {
		t.Errorf("PerUser = %+v", s.PerUser)
	}
}

func TestConversationsEngine(t *testing.T) {
	c := analyze(t, fixtureTable(t)).Results.Conversations

	if c.Total != 3 {
		t.Errorf("Total = %d, want 3", c.Total)
	}
	if c.AvgLength != 2.33 {
		t.Errorf("AvgLength = %v, want 2.33", c.AvgLength)
	}
	if c.AvgDurationMins != 13.33 {
		t.Errorf("AvgDurationMins = %v, want 13.33", c.AvgDurationMins)
	}
	wantStarters := []UserCount{{User: "Alice", Count: 1}, {User: "Bob", Count: 1}, {User: "Carol", Count: 1}}
	if !reflect.DeepEqual(c.Starters, wantStarters) {
		t.Errorf("Starters = %+v", c.Starters)
	}
	wantEnders := []UserCount{{User: "Alice", Count: 2}, {User: "Bob", Count: 1}}
	if !reflect.DeepEqual(c.Enders, wantEnders) {
		t.Errorf("Enders = %+v", c.Enders)
	}
	if len(c.Weekly) != 1 || c.Weekly[0].Week != "2023-W01" || c.Weekly[0].Conversations != 3 {
		t.Errorf("Weekly = %+v", c.Weekly)
	}
}

func TestRepliesEngine(t *testing.T) {
	r := analyze(t, fixtureTable(t)).Results.Replies

	if r.Replies != 5 {
		t.Errorf("Replies = %d, want 5", r.Replies)
	}
	if r.AvgMinutes != 551.8 {
		t.Errorf("AvgMinutes = %v, want 551.8", r.AvgMinutes)
	}
	if r.MedianMinutes != 24 {
		t.Errorf("MedianMinutes = %v, want 24", r.MedianMinutes)
	}
	if r.LateReplies != 1 || r.LateAvgHours != 34.5 {
		t.Errorf("late = %d avg %vh, want 1 avg 34.5h", r.LateReplies, r.LateAvgHours)
	}
	if r.Longest == nil || r.Longest.User != "Carol" || r.Longest.RepliedTo != "Alice" || r.Longest.Minutes != 2070 {
		t.Errorf("Longest = %+v", r.Longest)
	}
	if r.Longest.Original != "I hate rain" {
		t.Errorf("Longest.Original = %q", r.Longest.Original)
	}

	if !reflect.DeepEqual(r.Graph.Nodes, []string{"Alice", "Bob", "Carol"}) {
		t.Errorf("Nodes = %v", r.Graph.Nodes)
	}
	wantEdges := []ReplyEdge{
		{From: "Bob", To: "Alice", Count: 2},
		{From: "Alice", To: "Bob", Count: 1},
		{From: "Alice", To: "Carol", Count: 1},
		{From: "Carol", To: "Alice", Count: 1},
	}
	if !reflect.DeepEqual(r.Graph.Edges, wantEdges) {
		t.Errorf("Edges = %+v, want %+v", r.Graph.Edges, wantEdges)
	}

	if len(r.PerUser) != 3 || r.PerUser[0].User != "Alice" || r.PerUser[0].AvgMinutes != 17 {
		t.Errorf("PerUser = %+v", r.PerUser)
	}
	if r.PerUser[2].Late != 1 {
		t.Errorf("Carol late = %d, want 1", r.PerUser[2].Late)
	}
}

func TestForecastEngine(t *testing.T) {
	f := analyze(t, fixtureTable(t)).Results.Forecast

	if f.HistoryDays != 3 {
		t.Errorf("HistoryDays = %d, want 3", f.HistoryDays)
	}
	if f.Slope != -1.5 {
		t.Errorf("Slope = %v, want -1.5", f.Slope)
	}
	if f.HistoricalDailyAvg != 2.33 {
		t.Errorf("HistoricalDailyAvg = %v, want 2.33", f.HistoricalDailyAvg)
	}
	if len(f.Predictions) != 7 {
		t.Fatalf("Predictions = %d, want 7", len(f.Predictions))
	}
	if f.Predictions[0].Date != "2023-01-05" || f.Predictions[6].Date != "2023-01-11" {
		t.Errorf("Prediction dates = %s..%s", f.Predictions[0].Date, f.Predictions[6].Date)
	}
	// A falling trend is clamped at zero
	for _, p := range f.Predictions {
		if p.Messages != 0 {
			t.Errorf("Prediction %s = %v, want 0", p.Date, p.Messages)
		}
	}
	if f.ChangePercent != -100 {
		t.Errorf("ChangePercent = %v, want -100", f.ChangePercent)
	}
}

func TestLeastSquares(t *testing.T) {
	tests := []struct {
		ys            []float64
		slope, interc float64
	}{
		{[]float64{1, 2, 3, 4}, 1, 1},
		{[]float64{5, 5, 5}, 0, 5},
		{[]float64{7}, 0, 7},
		{nil, 0, 0},
	}
	for _, tt := range tests {
		s, i := leastSquares(tt.ys)
		if math.Abs(s-tt.slope) > 1e-9 || math.Abs(i-tt.interc) > 1e-9 {
			t.Errorf("leastSquares(%v) = (%v, %v), want (%v, %v)", tt.ys, s, i, tt.slope, tt.interc)
		}
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{3}, 3},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		if got := median(tt.in); got != tt.want {
			t.Errorf("median(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
