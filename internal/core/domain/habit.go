package domain

import (
	"errors"
	"math/rand"
	"strings"
	"time"
)

var (
	ErrHabitNameEmpty   = errors.New("habit name cannot be empty")
	ErrAlreadyCompleted = errors.New("habit already completed today")
)

const (
	HabitFreqDaily   = "daily"
	HabitFreqWeekly  = "weekly"
	FeaturedStreak   = 10
	MaxProgressValue = 100
)

// Icons is the fixed glyph set new habits draw from.
var Icons = []string{"🎯", "💪", "📖", "🏃", "🧘", "💧", "🎨", "🎵", "🍎", "✍️"}

type Habit struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Icon           string `json:"icon"`
	Frequency      string `json:"frequency"`
	Streak         int    `json:"streak"`
	CompletedToday bool   `json:"completedToday"`
	LastCompleted  *Day   `json:"lastCompleted"`
	TotalCompleted int    `json:"totalCompleted"`
}

// RandomIcon picks a glyph from Icons using rng.
func RandomIcon(rng *rand.Rand) string {
	return Icons[rng.Intn(len(Icons))]
}

func NewHabit(id int64, name, frequency, icon string) (*Habit, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrHabitNameEmpty
	}

	freq := strings.TrimSpace(frequency)
	if freq == "" {
		freq = HabitFreqDaily
	}

	return &Habit{
		ID:        id,
		Name:      trimmed,
		Icon:      icon,
		Frequency: freq,
	}, nil
}

// IsCompletedOn reports whether the habit is in the Done state for day.
func (h *Habit) IsCompletedOn(day Day) bool {
	return h.CompletedToday && h.LastCompleted != nil && *h.LastCompleted == day
}

// Complete moves the habit from Pending to Done for day.
func (h *Habit) Complete(day Day) error {
	if h.IsCompletedOn(day) {
		return ErrAlreadyCompleted
	}

	d := day
	h.CompletedToday = true
	h.LastCompleted = &d
	h.Streak++
	h.TotalCompleted++
	return nil
}

// NeedsReset reports whether the daily boundary has been crossed since the
// last completion. The streak is never touched by a reset.
func (h *Habit) NeedsReset(today Day) bool {
	return h.LastCompleted != nil && *h.LastCompleted != today
}

// ResetDay clears a completion flag left over from an earlier day and
// reports whether it flipped.
func (h *Habit) ResetDay(today Day) bool {
	if !h.CompletedToday || !h.NeedsReset(today) {
		return false
	}
	h.CompletedToday = false
	return true
}

// Progress is the lifetime completion count capped at MaxProgressValue.
func (h *Habit) Progress() int {
	return min(MaxProgressValue, h.TotalCompleted)
}

func (h *Habit) IsFeatured() bool {
	return h.Streak >= FeaturedStreak
}

// Clone returns a deep copy safe to hand out of the store.
func (h *Habit) Clone() Habit {
	c := *h
	if h.LastCompleted != nil {
		d := *h.LastCompleted
		c.LastCompleted = &d
	}
	return c
}

// NextID returns a creation-time id strictly greater than last.
func NextID(now time.Time, last int64) int64 {
	id := now.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}
