package workers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
)

const DefaultResetInterval = 60 * time.Second

type HabitResetter interface {
	DailyReset(ctx context.Context) (bool, error)
}

type Publisher interface {
	Publish(reason string)
}

// ResetWorker sweeps completion flags on a fixed wall-clock interval and
// asks open boards to repaint when a sweep changed something.
type ResetWorker struct {
	store    HabitResetter
	notify   Publisher
	interval time.Duration
	log      logrus.FieldLogger
	done     chan struct{}
}

func NewResetWorker(store HabitResetter, notify Publisher, interval time.Duration, log logrus.FieldLogger) *ResetWorker {
	if interval <= 0 {
		interval = DefaultResetInterval
	}
	return &ResetWorker{
		store:    store,
		notify:   notify,
		interval: interval,
		log:      log.WithField("component", "reset_worker"),
		done:     make(chan struct{}),
	}
}

func (w *ResetWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.log.WithField("interval", w.interval.String()).Info("reset worker started")
		for {
			select {
			case <-ticker.C:
				w.RunOnce(ctx)
			case <-ctx.Done():
				w.log.Info("reset worker shutting down")
				return
			}
		}
	}()
}

// Done is closed once the worker goroutine has exited.
func (w *ResetWorker) Done() <-chan struct{} {
	return w.done
}

// RunOnce performs a single sweep and reports whether it changed anything.
func (w *ResetWorker) RunOnce(ctx context.Context) bool {
	changed, err := w.store.DailyReset(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrPersist) {
			w.log.WithError(err).Warn("daily reset applied but not persisted")
		} else {
			w.log.WithError(err).Error("daily reset failed")
			return false
		}
	}

	if !changed {
		return false
	}

	w.log.Info("completion flags reset for a new day")
	if w.notify != nil {
		w.notify.Publish("daily_reset")
	}
	return true
}
