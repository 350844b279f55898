package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/agendly/agendly-backend/internal/services"
)

// Sweeper drives the subscription lifecycle sweeps on fixed intervals. Both
// sweeps are idempotent, so overlapping or missed ticks are harmless.
type Sweeper struct {
	lifecycle        *services.LifecycleService
	overdueInterval  time.Duration
	reminderInterval time.Duration
}

func New(lifecycle *services.LifecycleService, overdueInterval, reminderInterval time.Duration) *Sweeper {
	return &Sweeper{
		lifecycle:        lifecycle,
		overdueInterval:  overdueInterval,
		reminderInterval: reminderInterval,
	}
}

// Start launches the sweep goroutines. Both run once immediately so a
// restarted process catches up without waiting a full interval.
func (s *Sweeper) Start(done chan struct{}) {
	go s.loop(done, s.overdueInterval, "overdue", func(ctx context.Context) error {
		return s.lifecycle.SweepOverdue(ctx, time.Now())
	})
	go s.loop(done, s.reminderInterval, "renewal_reminders", func(ctx context.Context) error {
		return s.lifecycle.SweepRenewalReminders(ctx, time.Now())
	})
}

func (s *Sweeper) loop(done chan struct{}, interval time.Duration, name string, sweep func(context.Context) error) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := sweep(ctx); err != nil {
			slog.Error("sweep failed", "sweep", name, "error", err)
		}
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			run()
		case <-done:
			return
		}
	}
}
