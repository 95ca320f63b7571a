package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates pending habit with zeroed counters", func(t *testing.T) {
		h, err := domain.NewHabit(42, "  Read  ", domain.HabitFreqWeekly, "📖")

		require.NoError(t, err)
		assert.Equal(t, int64(42), h.ID)
		assert.Equal(t, "Read", h.Name)
		assert.Equal(t, "📖", h.Icon)
		assert.Equal(t, domain.HabitFreqWeekly, h.Frequency)
		assert.Equal(t, 0, h.Streak)
		assert.Equal(t, 0, h.TotalCompleted)
		assert.False(t, h.CompletedToday)
		assert.Nil(t, h.LastCompleted)
	})

	t.Run("Success: Empty frequency defaults to daily", func(t *testing.T) {
		h, err := domain.NewHabit(1, "Run", "", "🏃")

		require.NoError(t, err)
		assert.Equal(t, domain.HabitFreqDaily, h.Frequency)
	})

	t.Run("Error: Blank name", func(t *testing.T) {
		_, err := domain.NewHabit(1, "   ", domain.HabitFreqDaily, "🏃")
		assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)
	})
}

func TestHabit_CompleteTransitions(t *testing.T) {
	today := domain.Day("2026-10-19")
	tomorrow := domain.Day("2026-10-20")

	h, err := domain.NewHabit(1, "Read", domain.HabitFreqDaily, "📖")
	require.NoError(t, err)

	t.Run("Pending -> Done bumps counters", func(t *testing.T) {
		require.NoError(t, h.Complete(today))

		assert.True(t, h.CompletedToday)
		require.NotNil(t, h.LastCompleted)
		assert.Equal(t, today, *h.LastCompleted)
		assert.Equal(t, 1, h.Streak)
		assert.Equal(t, 1, h.TotalCompleted)
	})

	t.Run("Done -> Done is rejected", func(t *testing.T) {
		err := h.Complete(today)

		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
		assert.Equal(t, 1, h.Streak)
		assert.Equal(t, 1, h.TotalCompleted)
	})

	t.Run("Same day reset keeps Done", func(t *testing.T) {
		assert.False(t, h.ResetDay(today))
		assert.True(t, h.CompletedToday)
	})

	t.Run("Boundary crossed -> Pending, streak untouched", func(t *testing.T) {
		assert.True(t, h.ResetDay(tomorrow))
		assert.False(t, h.CompletedToday)
		assert.Equal(t, 1, h.Streak)
	})

	t.Run("Pending stays Pending without a change", func(t *testing.T) {
		assert.False(t, h.ResetDay(tomorrow))
		assert.False(t, h.ResetDay("2026-10-25"))
	})

	t.Run("Pending -> Done on the new day", func(t *testing.T) {
		require.NoError(t, h.Complete(tomorrow))
		assert.Equal(t, 2, h.Streak)
		assert.Equal(t, 2, h.TotalCompleted)
	})
}

func TestHabit_CompleteWithStaleFlag(t *testing.T) {
	yesterday := domain.Day("2026-10-18")
	h := &domain.Habit{ID: 1, Name: "Run", CompletedToday: true, LastCompleted: &yesterday, Streak: 3, TotalCompleted: 3}

	err := h.Complete("2026-10-19")

	require.NoError(t, err, "a flag left over from a previous day must not block completion")
	assert.Equal(t, 4, h.Streak)
}

func TestHabit_ResetWithoutCompletion(t *testing.T) {
	h := &domain.Habit{ID: 1, Name: "Run"}

	assert.False(t, h.NeedsReset("2026-10-19"))
	assert.False(t, h.ResetDay("2026-10-19"))
}

func TestHabit_Progress(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  int
	}{
		{name: "Zero", total: 0, want: 0},
		{name: "Partial", total: 37, want: 37},
		{name: "Exactly full", total: 100, want: 100},
		{name: "Saturates", total: 250, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := domain.Habit{TotalCompleted: tt.total}
			assert.Equal(t, tt.want, h.Progress())
		})
	}
}

func TestHabit_IsFeatured(t *testing.T) {
	assert.False(t, (&domain.Habit{Streak: 9}).IsFeatured())
	assert.True(t, (&domain.Habit{Streak: 10}).IsFeatured())
}

func TestHabit_CloneIsDeep(t *testing.T) {
	day := domain.Day("2026-10-19")
	h := &domain.Habit{ID: 1, LastCompleted: &day}

	c := h.Clone()
	*c.LastCompleted = "2000-01-01"

	assert.Equal(t, domain.Day("2026-10-19"), *h.LastCompleted)
}

func TestRandomIcon_Deterministic(t *testing.T) {
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		icon := domain.RandomIcon(a)
		assert.Contains(t, domain.Icons, icon)
		assert.Equal(t, icon, domain.RandomIcon(b))
	}
}

func TestNextID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, int64(1_700_000_000_000), domain.NextID(now, 0))
	assert.Equal(t, int64(1_700_000_000_001), domain.NextID(now, 1_700_000_000_000))
	assert.Equal(t, int64(1_800_000_000_000), domain.NextID(now, 1_799_999_999_999))
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	late := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, domain.Day("2026-10-19"), domain.DayOf(late))
	assert.Equal(t, domain.Day("2026-10-20"), domain.DayOf(late.In(loc)), "labels follow the local calendar")

	early := time.Date(2026, 10, 19, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, domain.DayOf(early), domain.DayOf(late), "time of day is ignored")
}
