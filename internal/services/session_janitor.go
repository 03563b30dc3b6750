package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type ExpiredSessionRepository interface {
	DeleteExpired(now time.Time) (int64, error)
}

// SessionJanitor periodically removes expired session rows.
type SessionJanitor struct {
	sessions ExpiredSessionRepository
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSessionJanitor(sessions ExpiredSessionRepository, interval time.Duration, logger zerolog.Logger) *SessionJanitor {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs one sweep immediately and then one per interval until ctx is done.
func (janitor *SessionJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(janitor.interval)
	go func() {
		defer ticker.Stop()

		janitor.Sweep()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				janitor.Sweep()
			}
		}
	}()
}

func (janitor *SessionJanitor) Sweep() int64 {
	removed, err := janitor.sessions.DeleteExpired(janitor.now().UTC())
	if err != nil {
		janitor.logger.Warn().Err(err).Msg("sessions: delete expired failed")
		return 0
	}
	if removed > 0 {
		janitor.logger.Debug().Int64("removed", removed).Msg("sessions: expired sessions removed")
	}
	return removed
}
