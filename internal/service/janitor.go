package service

import (
	"context"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/ZertGraf/bugtracker/internal/repository"
	"time"
)

// SessionJanitor periodically removes expired sessions.
type SessionJanitor struct {
	sessions repository.SessionRepository
	interval time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

const defaultCleanupInterval = 10 * time.Minute

func NewSessionJanitor(sessions repository.SessionRepository, interval time.Duration, logger *logger.Logger) *SessionJanitor {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		logger:   logger.Component("service/janitor"),
		now:      time.Now,
	}
}

// Run sweeps once immediately, then every interval until ctx is done.
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("session janitor started", "interval", j.interval)
	j.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

func (j *SessionJanitor) Sweep(ctx context.Context) int64 {
	removed, err := j.sessions.DeleteExpired(ctx, j.now())
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error("expired session cleanup failed", "error", err)
		}
		return 0
	}

	if removed > 0 {
		j.logger.Info("expired sessions removed", "count", removed)
	}
	return removed
}
