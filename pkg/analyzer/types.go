// Package analyzer derives statistics, temporal patterns and conversation
// metrics from a message table.
package analyzer

import (
	"time"
)

// Scope says which rows an engine sees when a user filter is active.
type Scope string

const (
	// ScopeUser engines see only the selected user's rows.
	ScopeUser Scope = "user"
	// ScopeChat engines always see the whole chat.
	ScopeChat Scope = "chat"
)

// Results holds one typed record per analysis. Disabled analyses stay nil.
type Results struct {
	Stats         *StatsResult         `json:"stats,omitempty" yaml:"stats,omitempty"`
	Users         *UsersResult         `json:"users,omitempty" yaml:"users,omitempty"`
	Timeline      *TimelineResult      `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Activity      *ActivityResult      `json:"activity,omitempty" yaml:"activity,omitempty"`
	Words         *WordsResult         `json:"words,omitempty" yaml:"words,omitempty"`
	Emoji         *EmojiResult         `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Sentiment     *SentimentResult     `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
	Types         *TypesResult         `json:"types,omitempty" yaml:"types,omitempty"`
	Conversations *ConversationsResult `json:"conversations,omitempty" yaml:"conversations,omitempty"`
	Replies       *RepliesResult       `json:"replies,omitempty" yaml:"replies,omitempty"`
	Forecast      *ForecastResult      `json:"forecast,omitempty" yaml:"forecast,omitempty"`
	Topics        *TopicsResult        `json:"topics,omitempty" yaml:"topics,omitempty"`
}

// UserCount pairs a user with a count.
type UserCount struct {
	User  string `json:"user" yaml:"user"`
	Count int    `json:"count" yaml:"count"`
}

// StatsResult holds the headline counts.
type StatsResult struct {
	Messages      int         `json:"messages" yaml:"messages"`
	Words         int         `json:"words" yaml:"words"`
	Media         int         `json:"media" yaml:"media"`
	Links         int         `json:"links" yaml:"links"`
	Notifications int         `json:"notifications" yaml:"notifications"`
	PerUser       []UserStats `json:"per_user,omitempty" yaml:"per_user,omitempty"`
}

// UserStats holds the headline counts of one user.
type UserStats struct {
	User     string `json:"user" yaml:"user"`
	Messages int    `json:"messages" yaml:"messages"`
	Words    int    `json:"words" yaml:"words"`
	Media    int    `json:"media" yaml:"media"`
	Links    int    `json:"links" yaml:"links"`
}

// UsersResult ranks authors by message count.
type UsersResult struct {
	Busy []UserShare `json:"busy" yaml:"busy"`
}

// UserShare is a user's share of authored messages.
type UserShare struct {
	User     string  `json:"user" yaml:"user"`
	Messages int     `json:"messages" yaml:"messages"`
	Percent  float64 `json:"percent" yaml:"percent"`
}

// TimelineResult holds message counts over time.
type TimelineResult struct {
	Monthly []PeriodCount `json:"monthly" yaml:"monthly"`
	Daily   []PeriodCount `json:"daily" yaml:"daily"`
}

// PeriodCount is the number of messages in a labelled period
// ("2023-01" for months, "2023-01-02" for days).
type PeriodCount struct {
	Period string `json:"period" yaml:"period"`
	Count  int    `json:"count" yaml:"count"`
}

// ActivityResult holds when people write.
type ActivityResult struct {
	Hours        [24]int       `json:"hours" yaml:"hours"`
	Week         []PeriodCount `json:"week" yaml:"week"`
	Months       []PeriodCount `json:"months" yaml:"months"`
	Heatmap      []HeatmapRow  `json:"heatmap" yaml:"heatmap"`
	BusiestHour  int           `json:"busiest_hour" yaml:"busiest_hour"`
	BusiestDay   string        `json:"busiest_day,omitempty" yaml:"busiest_day,omitempty"`
	BusiestMonth string        `json:"busiest_month,omitempty" yaml:"busiest_month,omitempty"`
}

// HeatmapRow holds per-hour counts of one weekday. Periods[h] counts the
// "hh-hh+1" bucket.
type HeatmapRow struct {
	Day     string  `json:"day" yaml:"day"`
	Periods [24]int `json:"periods" yaml:"periods"`
}

// WordsResult holds vocabulary and message length figures.
type WordsResult struct {
	Top             []WordCount `json:"top" yaml:"top"`
	TotalWords      int         `json:"total_words" yaml:"total_words"`
	UniqueWords     int         `json:"unique_words" yaml:"unique_words"`
	WordsPerMessage float64     `json:"words_per_message" yaml:"words_per_message"`
	AvgLength       float64     `json:"avg_length" yaml:"avg_length"`
	MaxLength       int         `json:"max_length" yaml:"max_length"`
	MinLength       int         `json:"min_length" yaml:"min_length"`
	Longest         string      `json:"longest,omitempty" yaml:"longest,omitempty"`
	LongestUser     string      `json:"longest_user,omitempty" yaml:"longest_user,omitempty"`
}

// WordCount pairs a word with its frequency.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// EmojiResult holds emoji usage.
type EmojiResult struct {
	Total   int          `json:"total" yaml:"total"`
	Unique  int          `json:"unique" yaml:"unique"`
	Density float64      `json:"density" yaml:"density"` // emojis per text message
	Top     []EmojiCount `json:"top" yaml:"top"`
	PerUser []UserEmojis `json:"per_user,omitempty" yaml:"per_user,omitempty"`
}

// EmojiCount pairs an emoji with its frequency.
type EmojiCount struct {
	Emoji string `json:"emoji" yaml:"emoji"`
	Count int    `json:"count" yaml:"count"`
}

// UserEmojis holds one user's emoji usage.
type UserEmojis struct {
	User  string       `json:"user" yaml:"user"`
	Total int          `json:"total" yaml:"total"`
	Top   []EmojiCount `json:"top" yaml:"top"`
}

// SentimentResult holds VADER sentiment figures.
type SentimentResult struct {
	Positive         int               `json:"positive" yaml:"positive"`
	Neutral          int               `json:"neutral" yaml:"neutral"`
	Negative         int               `json:"negative" yaml:"negative"`
	Average          float64           `json:"average" yaml:"average"`
	PerUser          []UserSentiment   `json:"per_user,omitempty" yaml:"per_user,omitempty"`
	MostPositiveUser string            `json:"most_positive_user,omitempty" yaml:"most_positive_user,omitempty"`
	MostNegativeUser string            `json:"most_negative_user,omitempty" yaml:"most_negative_user,omitempty"`
	MostPositive     *ScoredMessage    `json:"most_positive,omitempty" yaml:"most_positive,omitempty"`
	MostNegative     *ScoredMessage    `json:"most_negative,omitempty" yaml:"most_negative,omitempty"`
	Monthly          []PeriodSentiment `json:"monthly,omitempty" yaml:"monthly,omitempty"`
	MoodLifters      []UserCount       `json:"mood_lifters,omitempty" yaml:"mood_lifters,omitempty"`
	MoodDampeners    []UserCount       `json:"mood_dampeners,omitempty" yaml:"mood_dampeners,omitempty"`
}

// UserSentiment holds one user's sentiment figures.
type UserSentiment struct {
	User        string  `json:"user" yaml:"user"`
	Messages    int     `json:"messages" yaml:"messages"`
	Average     float64 `json:"average" yaml:"average"`
	PositivePct float64 `json:"positive_pct" yaml:"positive_pct"`
	NegativePct float64 `json:"negative_pct" yaml:"negative_pct"`
}

// ScoredMessage is a message with its sentiment score.
type ScoredMessage struct {
	User      string    `json:"user" yaml:"user"`
	Message   string    `json:"message" yaml:"message"`
	Score     float64   `json:"score" yaml:"score"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// PeriodSentiment is the average sentiment of a month.
type PeriodSentiment struct {
	Period   string  `json:"period" yaml:"period"`
	Average  float64 `json:"average" yaml:"average"`
	Messages int     `json:"messages" yaml:"messages"`
}

// TypesResult counts messages by kind. Each row has exactly one kind.
type TypesResult struct {
	Text         int `json:"text" yaml:"text"`
	Media        int `json:"media" yaml:"media"`
	Link         int `json:"link" yaml:"link"`
	Deleted      int `json:"deleted" yaml:"deleted"`
	EmojiOnly    int `json:"emoji_only" yaml:"emoji_only"`
	Notification int `json:"notification" yaml:"notification"`
}

// ConversationsResult holds session figures.
type ConversationsResult struct {
	Total           int              `json:"total" yaml:"total"`
	AvgLength       float64          `json:"avg_length" yaml:"avg_length"`
	AvgDurationMins float64          `json:"avg_duration_mins" yaml:"avg_duration_mins"`
	Starters        []UserCount      `json:"starters" yaml:"starters"`
	Enders          []UserCount      `json:"enders" yaml:"enders"`
	Weekly          []WeeklySessions `json:"weekly" yaml:"weekly"`
}

// WeeklySessions holds the conversations started in one ISO week.
type WeeklySessions struct {
	Week          string  `json:"week" yaml:"week"`
	Conversations int     `json:"conversations" yaml:"conversations"`
	AvgSize       float64 `json:"avg_size" yaml:"avg_size"`
}

// RepliesResult holds response-time figures.
type RepliesResult struct {
	Replies       int           `json:"replies" yaml:"replies"`
	AvgMinutes    float64       `json:"avg_minutes" yaml:"avg_minutes"`
	MedianMinutes float64       `json:"median_minutes" yaml:"median_minutes"`
	PerUser       []UserReplies `json:"per_user" yaml:"per_user"`
	LateReplies   int           `json:"late_replies" yaml:"late_replies"`
	LateAvgHours  float64       `json:"late_avg_hours" yaml:"late_avg_hours"`
	Longest       *LongestReply `json:"longest,omitempty" yaml:"longest,omitempty"`
	Graph         ReplyGraph    `json:"graph" yaml:"graph"`
}

// UserReplies holds one user's response figures.
type UserReplies struct {
	User          string  `json:"user" yaml:"user"`
	Replies       int     `json:"replies" yaml:"replies"`
	AvgMinutes    float64 `json:"avg_minutes" yaml:"avg_minutes"`
	MedianMinutes float64 `json:"median_minutes" yaml:"median_minutes"`
	Late          int     `json:"late" yaml:"late"`
}

// LongestReply is the slowest reply in the chat.
type LongestReply struct {
	User      string  `json:"user" yaml:"user"`
	Minutes   float64 `json:"minutes" yaml:"minutes"`
	Message   string  `json:"message" yaml:"message"`
	RepliedTo string  `json:"replied_to" yaml:"replied_to"`
	Original  string  `json:"original" yaml:"original"`
}

// ReplyGraph is the directed "who answers whom" graph.
type ReplyGraph struct {
	Nodes []string    `json:"nodes" yaml:"nodes"`
	Edges []ReplyEdge `json:"edges" yaml:"edges"`
}

// ReplyEdge counts replies from one user to another.
type ReplyEdge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Count int    `json:"count" yaml:"count"`
}

// ForecastResult holds a linear activity forecast.
type ForecastResult struct {
	HistoryDays        int               `json:"history_days" yaml:"history_days"`
	Slope              float64           `json:"slope" yaml:"slope"`
	Intercept          float64           `json:"intercept" yaml:"intercept"`
	HistoricalDailyAvg float64           `json:"historical_daily_avg" yaml:"historical_daily_avg"`
	PredictedDailyAvg  float64           `json:"predicted_daily_avg" yaml:"predicted_daily_avg"`
	ChangePercent      float64           `json:"change_percent" yaml:"change_percent"`
	Predictions        []DailyPrediction `json:"predictions" yaml:"predictions"`
}

// DailyPrediction is the predicted message count of one day.
type DailyPrediction struct {
	Date     string  `json:"date" yaml:"date"`
	Messages float64 `json:"messages" yaml:"messages"`
}

// TopicsResult holds an LDA topic model of the text messages.
type TopicsResult struct {
	Documents  int     `json:"documents" yaml:"documents"`
	Vocabulary int     `json:"vocabulary" yaml:"vocabulary"`
	Topics     []Topic `json:"topics" yaml:"topics"`
}

// Topic is one LDA topic. Messages counts the documents whose dominant
// topic it is.
type Topic struct {
	ID       int      `json:"id" yaml:"id"`
	Words    []string `json:"words" yaml:"words"`
	Messages int      `json:"messages" yaml:"messages"`
}
