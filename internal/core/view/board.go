// Package view projects habit state into the display model the board
// templates and the JSON API render. Nothing here mutates state.
package view

import (
	"fmt"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
)

const (
	NoticeAlreadyCompleted = "already_completed"

	labelCompleted = "✓ Completed Today"
	labelPending   = "Mark Complete"
)

var notices = map[string]string{
	NoticeAlreadyCompleted: "You already completed this today.",
}

type Card struct {
	ID             int64  `json:"id"`
	Icon           string `json:"icon"`
	Name           string `json:"name"`
	Frequency      string `json:"frequency"`
	Streak         int    `json:"streak"`
	StreakLabel    string `json:"streakLabel"`
	Percent        int    `json:"percent"`
	ProgressLabel  string `json:"progressLabel"`
	Featured       bool   `json:"featured"`
	CompletedToday bool   `json:"completedToday"`
	ButtonLabel    string `json:"buttonLabel"`
	ButtonDisabled bool   `json:"buttonDisabled"`
}

type Board struct {
	Cards              []Card `json:"cards"`
	TotalHabits        int    `json:"totalHabits"`
	LongestStreak      int    `json:"longestStreak"`
	LongestStreakLabel string `json:"longestStreakLabel"`
	Notice             string `json:"notice,omitempty"`
	FocusName          bool   `json:"-"`
	ClientID           string `json:"-"`
}

// BuildBoard renders one card per habit, in the given order, plus the
// aggregate figures.
func BuildBoard(habits []domain.Habit, today domain.Day) Board {
	stats := domain.ComputeStats(habits)

	board := Board{
		Cards:              make([]Card, 0, len(habits)),
		TotalHabits:        stats.Count,
		LongestStreak:      stats.LongestStreak,
		LongestStreakLabel: fmt.Sprintf("%d days", stats.LongestStreak),
	}

	for i := range habits {
		board.Cards = append(board.Cards, BuildCard(habits[i], today))
	}
	return board
}

func BuildCard(h domain.Habit, today domain.Day) Card {
	done := h.IsCompletedOn(today)
	percent := h.Progress()

	label := labelPending
	if done {
		label = labelCompleted
	}

	return Card{
		ID:             h.ID,
		Icon:           h.Icon,
		Name:           h.Name,
		Frequency:      h.Frequency,
		Streak:         h.Streak,
		StreakLabel:    fmt.Sprintf("%d day streak", h.Streak),
		Percent:        percent,
		ProgressLabel:  fmt.Sprintf("%d%% complete", percent),
		Featured:       h.IsFeatured(),
		CompletedToday: done,
		ButtonLabel:    label,
		ButtonDisabled: done,
	}
}

// NoticeText resolves a notice code; unknown codes render nothing.
func NoticeText(code string) string {
	return notices[code]
}

type Confirmation struct {
	HabitID  int64  `json:"habitId"`
	Prompt   string `json:"prompt"`
	ClientID string `json:"-"`
}

func ConfirmDelete(h domain.Habit) Confirmation {
	return Confirmation{
		HabitID: h.ID,
		Prompt:  fmt.Sprintf("Are you sure you want to delete \"%s\"? This action cannot be undone.", h.Name),
	}
}
