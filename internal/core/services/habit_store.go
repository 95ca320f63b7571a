package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
)

// HabitStore owns the habit collection. Every operation runs under one
// mutex so mutations never interleave, and each successful mutation is
// flushed to storage before the call returns.
type HabitStore struct {
	storage domain.Storage
	log     logrus.FieldLogger

	now func() time.Time
	rng *rand.Rand

	mu     sync.Mutex
	habits []*domain.Habit
	lastID int64
}

type StoreOption func(*HabitStore)

// WithClock replaces time.Now; the clock's location decides calendar days.
func WithClock(now func() time.Time) StoreOption {
	return func(s *HabitStore) {
		s.now = now
	}
}

// WithRand sets the source used to pick icons.
func WithRand(rng *rand.Rand) StoreOption {
	return func(s *HabitStore) {
		s.rng = rng
	}
}

func NewHabitStore(storage domain.Storage, log logrus.FieldLogger, opts ...StoreOption) *HabitStore {
	s := &HabitStore{
		storage: storage,
		log:     log.WithField("component", "habit_store"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.now().UnixNano()))
	}
	return s
}

func (s *HabitStore) Today() domain.Day {
	return domain.DayOf(s.now())
}

// Load replaces the collection with the persisted one. Missing or malformed
// data yields an empty collection; only a failing read is returned.
func (s *HabitStore) Load(ctx context.Context) ([]domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.storage.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read habits: %w", err)
	}

	s.habits = nil
	s.lastID = 0

	if !ok {
		s.log.Info("no stored habits, starting empty")
		return []domain.Habit{}, nil
	}

	decoded, err := domain.DecodeHabits(data)
	if err != nil {
		s.log.WithError(err).Warn("stored habits unreadable, starting empty")
		return []domain.Habit{}, nil
	}

	seen := make(map[int64]bool, len(decoded))
	for i := range decoded {
		h := decoded[i]
		if seen[h.ID] {
			s.log.WithField("habit_id", h.ID).Warn("duplicate habit id in stored data, keeping first")
			continue
		}
		seen[h.ID] = true
		s.habits = append(s.habits, &h)
		if h.ID > s.lastID {
			s.lastID = h.ID
		}
	}

	s.log.WithField("count", len(s.habits)).Info("habits loaded")
	return s.snapshot(), nil
}

func (s *HabitStore) Add(ctx context.Context, name, frequency string) (*domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.NextID(s.now(), s.lastID)

	habit, err := domain.NewHabit(id, name, frequency, domain.RandomIcon(s.rng))
	if err != nil {
		return nil, err
	}

	s.habits = append(s.habits, habit)
	s.lastID = id

	created := habit.Clone()
	return &created, s.persist(ctx)
}

func (s *HabitStore) Complete(ctx context.Context, id int64) (*domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habit, _ := s.find(id)
	if habit == nil {
		return nil, domain.ErrHabitNotFound
	}

	if err := habit.Complete(domain.DayOf(s.now())); err != nil {
		c := habit.Clone()
		return &c, err
	}

	c := habit.Clone()
	return &c, s.persist(ctx)
}

// Delete removes the habit. Confirmation is the caller's business.
func (s *HabitStore) Delete(ctx context.Context, id int64) (*domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habit, idx := s.find(id)
	if habit == nil {
		return nil, domain.ErrHabitNotFound
	}

	s.habits = append(s.habits[:idx], s.habits[idx+1:]...)

	removed := habit.Clone()
	return &removed, s.persist(ctx)
}

// DailyReset clears the completed flag of every habit last completed on an
// earlier day. It writes and reports true only when something changed.
func (s *HabitStore) DailyReset(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.DayOf(s.now())
	changed := false
	for _, h := range s.habits {
		if h.ResetDay(today) {
			changed = true
		}
	}

	if !changed {
		return false, nil
	}
	return true, s.persist(ctx)
}

func (s *HabitStore) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.ComputeStats(s.snapshot())
}

// List returns copies of the habits in insertion order.
func (s *HabitStore) List() []domain.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *HabitStore) Get(id int64) (*domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habit, _ := s.find(id)
	if habit == nil {
		return nil, domain.ErrHabitNotFound
	}
	c := habit.Clone()
	return &c, nil
}

func (s *HabitStore) find(id int64) (*domain.Habit, int) {
	for i, h := range s.habits {
		if h.ID == id {
			return h, i
		}
	}
	return nil, -1
}

func (s *HabitStore) snapshot() []domain.Habit {
	out := make([]domain.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, h.Clone())
	}
	return out
}

// persist must be called with mu held.
func (s *HabitStore) persist(ctx context.Context) error {
	data, err := domain.EncodeHabits(s.snapshot())
	if err != nil {
		return errors.Join(domain.ErrPersist, err)
	}
	if err := s.storage.Write(ctx, data); err != nil {
		s.log.WithError(err).Error("failed to write habits")
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}
	return nil
}
