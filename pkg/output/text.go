package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/ccollicutt/chatstat/pkg/analyzer"
)

var (
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
)

const (
	dateLayout = "2006-01-02 15:04"
	snippetMax = 60
	barMax     = 30
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text. Colors are only emitted when w is a
// terminal.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	p := newPrinter(w)
	if f.opts.Quiet {
		return f.formatQuiet(report, p)
	}
	return f.formatFull(report, p)
}

// printer writes styled lines to w.
type printer struct {
	w       io.Writer
	title   lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	warn    lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		title:   r.NewStyle().Foreground(colorPrimary).Bold(true),
		section: r.NewStyle().Foreground(colorSecondary).Bold(true),
		label:   r.NewStyle().Foreground(colorDim),
		warn:    r.NewStyle().Foreground(colorHighlight),
	}
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) heading(name string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.section.Render("["+strings.ToUpper(name)+"]"))
}

func (p *printer) field(label string, value any) {
	fmt.Fprintf(p.w, "  %s %v\n", p.label.Render(runewidth.FillRight(label+":", 22)), value)
}

type column struct {
	title string
	width int
	right bool
}

// table prints rows under a header, padding and truncating every cell to
// its column's display width.
func (p *printer) table(cols []column, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(p.w, "  (none)")
		return
	}
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = cell(c.title, c)
	}
	fmt.Fprintln(p.w, "  "+p.label.Render(strings.Join(header, "  ")))
	for _, row := range rows {
		out := make([]string, len(cols))
		for i, c := range cols {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			out[i] = cell(v, c)
		}
		fmt.Fprintln(p.w, "  "+strings.TrimRight(strings.Join(out, "  "), " "))
	}
}

func cell(s string, c column) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > c.width {
		s = runewidth.Truncate(s, c.width, "…")
	}
	if c.right {
		return runewidth.FillLeft(s, c.width)
	}
	return runewidth.FillRight(s, c.width)
}

func snippet(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > snippetMax {
		s = runewidth.Truncate(s, snippetMax, "…")
	}
	return s
}

func bar(n, peak int) string {
	if peak == 0 || n == 0 {
		return ""
	}
	w := n * barMax / peak
	if w == 0 {
		w = 1
	}
	return strings.Repeat("█", w)
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func float(f float64) string {
	return humanize.CommafWithDigits(f, 2)
}

func (f *TextFormatter) formatQuiet(report *Report, p *printer) error {
	p.printf("chatstat: %s messages from %d users, %d dropped\n",
		count(report.Summary.Messages),
		report.Summary.Users,
		report.Summary.RowsDropped)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, p *printer) error {
	fmt.Fprintln(p.w, p.title.Render("=== chatstat Analysis Report ==="))
	fmt.Fprintln(p.w)

	s := report.Summary
	if len(report.Metadata.Sources) > 0 {
		p.field("Sources", strings.Join(report.Metadata.Sources, ", "))
	}
	p.field("Format", report.Metadata.Format)
	if report.Metadata.User != "" {
		p.field("User", report.Metadata.User)
	}
	if !s.FirstMessage.IsZero() {
		p.field("Period", fmt.Sprintf("%s to %s (%s)",
			s.FirstMessage.Format(dateLayout),
			s.LastMessage.Format(dateLayout),
			strings.TrimSpace(humanize.RelTime(s.FirstMessage, s.LastMessage, "", ""))))
	}
	p.field("Rows", count(s.Messages))
	p.field("Users", s.Users)

	for _, n := range report.Notes {
		fmt.Fprintln(p.w, p.warn.Render("  ! "+n))
	}

	if r := report.Results; r != nil {
		f.formatResults(r, p)
	}

	// Summary
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "---")
	p.printf("Summary: %s rows analyzed, %d users, %d rows dropped, %d out of order\n",
		count(s.Messages), s.Users, s.RowsDropped, s.OutOfOrder)

	if f.opts.Verbose {
		if report.Metadata.ConfigFile != "" {
			p.printf("Config: %s\n", report.Metadata.ConfigFile)
		}
		p.printf("Analyses: %s\n", strings.Join(report.Metadata.Analyses, ", "))
		p.printf("Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}

	return nil
}

func (f *TextFormatter) formatResults(r *analyzer.Results, p *printer) {
	if r.Stats != nil {
		f.formatStats(r.Stats, p)
	}
	if r.Users != nil {
		f.formatUsers(r.Users, p)
	}
	if r.Types != nil {
		f.formatTypes(r.Types, p)
	}
	if r.Timeline != nil {
		f.formatTimeline(r.Timeline, p)
	}
	if r.Activity != nil {
		f.formatActivity(r.Activity, p)
	}
	if r.Words != nil {
		f.formatWords(r.Words, p)
	}
	if r.Emoji != nil {
		f.formatEmoji(r.Emoji, p)
	}
	if r.Sentiment != nil {
		f.formatSentiment(r.Sentiment, p)
	}
	if r.Conversations != nil {
		f.formatConversations(r.Conversations, p)
	}
	if r.Replies != nil {
		f.formatReplies(r.Replies, p)
	}
	if r.Forecast != nil {
		f.formatForecast(r.Forecast, p)
	}
	if r.Topics != nil {
		f.formatTopics(r.Topics, p)
	}
}

func (f *TextFormatter) formatStats(s *analyzer.StatsResult, p *printer) {
	p.heading("stats")
	p.field("Messages", count(s.Messages))
	p.field("Words", count(s.Words))
	p.field("Media", count(s.Media))
	p.field("Links", count(s.Links))
	p.field("Notifications", count(s.Notifications))

	if !f.opts.Verbose {
		return
	}
	rows := make([][]string, 0, len(s.PerUser))
	for _, u := range s.PerUser {
		rows = append(rows, []string{u.User, count(u.Messages), count(u.Words), count(u.Media), count(u.Links)})
	}
	p.table([]column{
		{"User", 20, false}, {"Messages", 9, true}, {"Words", 9, true}, {"Media", 7, true}, {"Links", 7, true},
	}, rows)
}

func (f *TextFormatter) formatUsers(u *analyzer.UsersResult, p *printer) {
	p.heading("users")
	rows := make([][]string, 0, len(u.Busy))
	for _, s := range u.Busy {
		rows = append(rows, []string{s.User, count(s.Messages), float(s.Percent) + "%"})
	}
	p.table([]column{{"User", 20, false}, {"Messages", 9, true}, {"Share", 8, true}}, rows)
}

func (f *TextFormatter) formatTypes(t *analyzer.TypesResult, p *printer) {
	p.heading("types")
	p.field("Text", count(t.Text))
	p.field("Media", count(t.Media))
	p.field("Links", count(t.Link))
	p.field("Deleted", count(t.Deleted))
	p.field("Emoji only", count(t.EmojiOnly))
	p.field("Notifications", count(t.Notification))
}

func (f *TextFormatter) formatTimeline(t *analyzer.TimelineResult, p *printer) {
	p.heading("timeline")
	p.periods("Month", t.Monthly)
	if f.opts.Verbose {
		fmt.Fprintln(p.w)
		p.periods("Day", t.Daily)
	}
}

func (p *printer) periods(title string, counts []analyzer.PeriodCount) {
	peak := 0
	for _, c := range counts {
		if c.Count > peak {
			peak = c.Count
		}
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Period, count(c.Count), bar(c.Count, peak)})
	}
	p.table([]column{{title, 10, false}, {"Messages", 9, true}, {"", barMax, false}}, rows)
}

func (f *TextFormatter) formatActivity(a *analyzer.ActivityResult, p *printer) {
	p.heading("activity")
	p.field("Busiest hour", fmt.Sprintf("%02d:00", a.BusiestHour))
	if a.BusiestDay != "" {
		p.field("Busiest day", a.BusiestDay)
	}
	if a.BusiestMonth != "" {
		p.field("Busiest month", a.BusiestMonth)
	}
	fmt.Fprintln(p.w)
	p.periods("Weekday", a.Week)

	if !f.opts.Verbose {
		return
	}
	fmt.Fprintln(p.w)
	hours := make([]analyzer.PeriodCount, 0, len(a.Hours))
	for h, c := range a.Hours {
		hours = append(hours, analyzer.PeriodCount{Period: fmt.Sprintf("%02d:00", h), Count: c})
	}
	p.periods("Hour", hours)
}

func (f *TextFormatter) formatWords(w *analyzer.WordsResult, p *printer) {
	p.heading("words")
	p.field("Total words", count(w.TotalWords))
	p.field("Unique words", count(w.UniqueWords))
	p.field("Words per message", float(w.WordsPerMessage))
	p.field("Avg length", float(w.AvgLength))
	p.field("Length range", fmt.Sprintf("%d to %d", w.MinLength, w.MaxLength))
	if w.Longest != "" {
		p.field("Longest", fmt.Sprintf("%s: %s", w.LongestUser, snippet(w.Longest)))
	}
	fmt.Fprintln(p.w)
	rows := make([][]string, 0, len(w.Top))
	for _, wc := range w.Top {
		rows = append(rows, []string{wc.Word, count(wc.Count)})
	}
	p.table([]column{{"Word", 20, false}, {"Count", 7, true}}, rows)
}

func (f *TextFormatter) formatEmoji(e *analyzer.EmojiResult, p *printer) {
	p.heading("emoji")
	p.field("Total", count(e.Total))
	p.field("Unique", count(e.Unique))
	p.field("Per message", float(e.Density))
	fmt.Fprintln(p.w)
	rows := make([][]string, 0, len(e.Top))
	for _, ec := range e.Top {
		rows = append(rows, []string{ec.Emoji, count(ec.Count)})
	}
	p.table([]column{{"Emoji", 8, false}, {"Count", 7, true}}, rows)

	if !f.opts.Verbose {
		return
	}
	fmt.Fprintln(p.w)
	rows = rows[:0]
	for _, u := range e.PerUser {
		top := make([]string, len(u.Top))
		for i, ec := range u.Top {
			top[i] = ec.Emoji
		}
		rows = append(rows, []string{u.User, count(u.Total), strings.Join(top, " ")})
	}
	p.table([]column{{"User", 20, false}, {"Emojis", 7, true}, {"Favourites", 16, false}}, rows)
}

func (f *TextFormatter) formatSentiment(s *analyzer.SentimentResult, p *printer) {
	p.heading("sentiment")
	p.field("Positive", count(s.Positive))
	p.field("Neutral", count(s.Neutral))
	p.field("Negative", count(s.Negative))
	p.field("Average", float(s.Average))
	if s.MostPositiveUser != "" {
		p.field("Most positive user", s.MostPositiveUser)
		p.field("Most negative user", s.MostNegativeUser)
	}
	if s.MostPositive != nil {
		p.field("Most positive", fmt.Sprintf("%s: %s", s.MostPositive.User, snippet(s.MostPositive.Message)))
	}
	if s.MostNegative != nil {
		p.field("Most negative", fmt.Sprintf("%s: %s", s.MostNegative.User, snippet(s.MostNegative.Message)))
	}

	if !f.opts.Verbose {
		return
	}
	fmt.Fprintln(p.w)
	rows := make([][]string, 0, len(s.PerUser))
	for _, u := range s.PerUser {
		rows = append(rows, []string{u.User, count(u.Messages), float(u.Average), float(u.PositivePct) + "%", float(u.NegativePct) + "%"})
	}
	p.table([]column{
		{"User", 20, false}, {"Messages", 9, true}, {"Average", 8, true}, {"Positive", 9, true}, {"Negative", 9, true},
	}, rows)
}

func (f *TextFormatter) formatConversations(c *analyzer.ConversationsResult, p *printer) {
	p.heading("conversations")
	p.field("Conversations", count(c.Total))
	p.field("Avg messages", float(c.AvgLength))
	p.field("Avg duration", float(c.AvgDurationMins)+" min")
	if len(c.Starters) > 0 {
		p.field("Top starter", fmt.Sprintf("%s (%d)", c.Starters[0].User, c.Starters[0].Count))
	}
	if len(c.Enders) > 0 {
		p.field("Top ender", fmt.Sprintf("%s (%d)", c.Enders[0].User, c.Enders[0].Count))
	}

	if !f.opts.Verbose {
		return
	}
	fmt.Fprintln(p.w)
	rows := make([][]string, 0, len(c.Weekly))
	for _, wk := range c.Weekly {
		rows = append(rows, []string{wk.Week, count(wk.Conversations), float(wk.AvgSize)})
	}
	p.table([]column{{"Week", 10, false}, {"Sessions", 9, true}, {"Avg size", 9, true}}, rows)
}

func (f *TextFormatter) formatReplies(r *analyzer.RepliesResult, p *printer) {
	p.heading("replies")
	p.field("Replies", count(r.Replies))
	p.field("Avg reply", float(r.AvgMinutes)+" min")
	p.field("Median reply", float(r.MedianMinutes)+" min")
	p.field("Late replies", fmt.Sprintf("%s (avg %s h)", count(r.LateReplies), float(r.LateAvgHours)))
	if r.Longest != nil {
		p.field("Slowest reply", fmt.Sprintf("%s to %s after %s min", r.Longest.User, r.Longest.RepliedTo, float(r.Longest.Minutes)))
	}
	fmt.Fprintln(p.w)
	rows := make([][]string, 0, len(r.PerUser))
	for _, u := range r.PerUser {
		rows = append(rows, []string{u.User, count(u.Replies), float(u.AvgMinutes), float(u.MedianMinutes), count(u.Late)})
	}
	p.table([]column{
		{"User", 20, false}, {"Replies", 8, true}, {"Avg min", 9, true}, {"Median", 9, true}, {"Late", 6, true},
	}, rows)

	if !f.opts.Verbose {
		return
	}
	fmt.Fprintln(p.w)
	rows = rows[:0]
	for _, e := range r.Graph.Edges {
		rows = append(rows, []string{e.From, e.To, count(e.Count)})
	}
	p.table([]column{{"From", 20, false}, {"To", 20, false}, {"Replies", 8, true}}, rows)
}

func (f *TextFormatter) formatForecast(fc *analyzer.ForecastResult, p *printer) {
	p.heading("forecast")
	if fc.HistoryDays == 0 {
		fmt.Fprintln(p.w, "  Not enough history")
		return
	}
	p.field("History", fmt.Sprintf("%d days, %s msgs/day", fc.HistoryDays, float(fc.HistoricalDailyAvg)))
	p.field("Predicted", fmt.Sprintf("%s msgs/day (%+.1f%%)", float(fc.PredictedDailyAvg), fc.ChangePercent))

	if !f.opts.Verbose {
		return
	}
	fmt.Fprintln(p.w)
	rows := make([][]string, 0, len(fc.Predictions))
	for _, d := range fc.Predictions {
		rows = append(rows, []string{d.Date, float(d.Messages)})
	}
	p.table([]column{{"Date", 10, false}, {"Messages", 9, true}}, rows)
}

func (f *TextFormatter) formatTopics(t *analyzer.TopicsResult, p *printer) {
	p.heading("topics")
	if len(t.Topics) == 0 {
		fmt.Fprintln(p.w, "  Not enough text")
		return
	}
	p.field("Documents", count(t.Documents))
	p.field("Vocabulary", count(t.Vocabulary))
	fmt.Fprintln(p.w)
	rows := make([][]string, 0, len(t.Topics))
	for _, tp := range t.Topics {
		rows = append(rows, []string{fmt.Sprintf("%d", tp.ID), strings.Join(tp.Words, ", "), count(tp.Messages)})
	}
	p.table([]column{{"Topic", 5, true}, {"Words", 40, false}, {"Msgs", 6, true}}, rows)
}
