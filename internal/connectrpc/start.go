package connectrpc

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// DefaultSessionIdle is how long an unused session survives on the server.
const DefaultSessionIdle = 2 * time.Hour

// StartServer serves the Connect service over HTTP/2 cleartext and blocks
// until ctx is cancelled.
func StartServer(ctx context.Context, addr string, server *NoticeServer) error {
	logger := pkgLogger.NewComponentLogger("connect-server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(server.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go reapSessions(ctx, server, DefaultSessionIdle, logger)

	logger.InfoWithIntention(pkgLogger.IntentionNetwork, "Connect server listening", "addr", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server error")
	}
	return nil
}

func reapSessions(ctx context.Context, server *NoticeServer, maxIdle time.Duration, logger *pkgLogger.Logger) {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := server.Store().Reap(maxIdle); n > 0 {
				logger.DebugWithIntention(pkgLogger.IntentionStatus, "Reaped idle sessions", "count", n)
			}
		}
	}
}
