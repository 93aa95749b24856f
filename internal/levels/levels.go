// Package levels maps completed-challenge counts to gamified levels and
// derives daily streaks from completion dates.
package levels

import (
	"math"
	"sort"
	"time"
)

// Unbounded marks the open upper end of the top level.
const Unbounded = math.MaxInt32

// Level is one rung of the progression ladder.
type Level struct {
	Level         int    `json:"level"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	MinChallenges int    `json:"minChallenges"`
	MaxChallenges int    `json:"maxChallenges"`
	Badge         string `json:"badge"`
	Color         string `json:"color"`
	Emoji         string `json:"emoji"`
}

// Table lists every level in ascending order.
var Table = []Level{
	{1, "Code Hatchling", "Just starting your coding journey!", 1, 10, "🥚", "#10b981", "🐣"},
	{2, "Bug Hunter", "Learning to spot and fix bugs!", 11, 20, "🔍", "#3b82f6", "🐛"},
	{3, "Code Ninja", "Stealthy problem solver!", 21, 50, "🥷", "#8b5cf6", "⚔️"},
	{4, "Algorithm Wizard", "Master of efficient solutions!", 51, 100, "🧙‍♂️", "#f59e0b", "✨"},
	{5, "Code Dragon", "Legendary programming skills!", 101, 200, "🐉", "#ef4444", "🔥"},
	{6, "Syntax Sage", "Wise in the ways of code!", 201, 500, "🧠", "#06b6d4", "📚"},
	{7, "Debug Deity", "Divine debugging powers!", 501, 1000, "⚡", "#8b5cf6", "👑"},
	{8, "Code Cosmos", "Your skills are out of this world!", 1001, Unbounded, "🌌", "#6366f1", "🚀"},
}

// ForTotal returns the level whose range contains total, or the first level.
func ForTotal(total int) Level {
	for _, l := range Table {
		if total >= l.MinChallenges && total <= l.MaxChallenges {
			return l
		}
	}
	return Table[0]
}

// Next returns the level after l; ok is false at the top.
func Next(l Level) (Level, bool) {
	for i, x := range Table {
		if x.Level == l.Level && i < len(Table)-1 {
			return Table[i+1], true
		}
	}
	return Level{}, false
}

// Progress describes how far a user is toward the next level.
type Progress struct {
	Current    int     `json:"current"`
	Needed     int     `json:"needed"`
	Percentage float64 `json:"percentage"`
}

// ProgressToNext reports progress from l toward the following level.
func ProgressToNext(total int, l Level) Progress {
	next, ok := Next(l)
	if !ok {
		return Progress{Current: total, Needed: 0, Percentage: 100}
	}
	current := total - l.MinChallenges + 1
	needed := next.MinChallenges - l.MinChallenges
	return Progress{
		Current:    current,
		Needed:     needed,
		Percentage: math.Min(float64(current)/float64(needed)*100, 100),
	}
}

// Streaks holds the current and longest runs of consecutive active days.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Streak counts consecutive UTC days with at least one completion, ending
// today or yesterday. Any gap before that breaks the streak.
func Streak(completions []time.Time, now time.Time) int {
	return Compute(completions, now).Current
}

// Compute returns both the current and the longest streak.
func Compute(completions []time.Time, now time.Time) Streaks {
	days := uniqueDays(completions)
	if len(days) == 0 {
		return Streaks{}
	}
	var s Streaks
	run := 1
	s.Longest = 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > s.Longest {
			s.Longest = run
		}
	}

	today := day(now)
	if gap := today.Sub(days[0]); gap != 0 && gap != 24*time.Hour {
		return s
	}
	s.Current = 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		s.Current++
	}
	return s
}

// uniqueDays returns distinct UTC dates, most recent first.
func uniqueDays(ts []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(ts))
	out := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		if t.IsZero() {
			continue
		}
		d := day(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
