package analyzer

import (
	"math"
	"sort"
	"time"
)

type keyCount struct {
	key   string
	count int
}

// ranked sorts counts by count descending, then key ascending, and keeps
// at most limit entries (all when limit <= 0).
func ranked(counts map[string]int, limit int) []keyCount {
	out := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func rankedUsers(counts map[string]int, limit int) []UserCount {
	r := ranked(counts, limit)
	out := make([]UserCount, len(r))
	for i, kc := range r {
		out[i] = UserCount{User: kc.key, Count: kc.count}
	}
	return out
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func minutes(d time.Duration) float64 {
	return d.Minutes()
}
