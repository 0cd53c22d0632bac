// Package hydrate reconciles the stored credential with the in-memory
// session at startup.
package hydrate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abenov/coursehub/internal/metrics"
	"github.com/abenov/coursehub/internal/session"
)

type tokenReader interface {
	Get() (string, error)
}

type sessionManager interface {
	State() session.State
	FetchUserData(ctx context.Context, tok string) error
}

// Controller runs the startup reconciliation exactly once. Whatever the
// outcome (no token, a populated session, a fetch success or failure)
// the render gate is released exactly once when reconciliation finishes.
type Controller struct {
	tokens tokenReader
	sess   sessionManager
	logger *slog.Logger

	once  sync.Once
	ready chan struct{}
}

func NewController(tokens tokenReader, sess sessionManager, logger *slog.Logger) *Controller {
	return &Controller{
		tokens: tokens,
		sess:   sess,
		logger: logger.With("component", "hydrate"),
		ready:  make(chan struct{}),
	}
}

// Ready is closed once hydration completes. First render blocks on it.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Run performs the reconciliation. Calling it again is a no-op.
func (c *Controller) Run(ctx context.Context) {
	c.once.Do(func() {
		start := time.Now()
		defer func() {
			metrics.HydrationDuration.Observe(time.Since(start).Seconds())
			close(c.ready)
		}()

		tok, err := c.tokens.Get()
		if err != nil {
			c.logger.Error("read stored token", "error", err)
			return
		}
		if tok == "" {
			c.logger.Debug("no stored credential, starting unauthenticated")
			return
		}

		// A remount with the session already populated skips the fetch.
		if st := c.sess.State(); st.Authenticated() {
			c.logger.Debug("session already populated, skipping profile fetch")
			return
		}

		// An error here still releases the gate; the UI renders the
		// unauthenticated state with the error banner instead of hanging.
		if err := c.sess.FetchUserData(ctx, tok); err != nil {
			c.logger.Warn("hydration fetch failed", "error", err)
		}
	})
}
