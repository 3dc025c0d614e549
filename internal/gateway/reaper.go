package gateway

import (
	"context"
	"time"

	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// Reaper drops peer sessions that have been idle for longer than the timeout.
type Reaper struct {
	sessions *SessionManager
	timeout  time.Duration
	logger   *pkgLogger.Logger
}

// NewReaper creates an idle session reaper.
func NewReaper(sessions *SessionManager, timeout time.Duration) *Reaper {
	return &Reaper{
		sessions: sessions,
		timeout:  timeout,
		logger:   pkgLogger.NewComponentLogger("reaper"),
	}
}

// Start runs the reaper loop. Blocks until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	interval := r.timeout / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reaper) sweep() int {
	n := r.sessions.ReapIdle(r.timeout)
	if n > 0 {
		r.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Dropped idle sessions", "count", n, "remaining", r.sessions.Len())
	}
	return n
}
