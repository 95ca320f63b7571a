package domain

type Stats struct {
	Count         int `json:"count"`
	LongestStreak int `json:"longestStreak"`
}

func ComputeStats(habits []Habit) Stats {
	stats := Stats{Count: len(habits)}
	for _, h := range habits {
		if h.Streak > stats.LongestStreak {
			stats.LongestStreak = h.Streak
		}
	}
	return stats
}
