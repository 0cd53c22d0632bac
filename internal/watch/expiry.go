package watch

import (
	"log/slog"
	"time"

	"github.com/abenov/coursehub/internal/metrics"
	"github.com/abenov/coursehub/internal/token"
	"github.com/robfig/cron/v3"
)

// expiryWarnWindow is how close to expiry the monitor starts warning.
const expiryWarnWindow = 5 * time.Minute

type claimReader interface {
	Get() (string, error)
}

// ExpiryMonitor periodically decodes the stored credential and reports how
// long it has left. Observational: approaching expiry produces a warning
// and a gauge update, never a logout.
type ExpiryMonitor struct {
	tokens claimReader
	logger *slog.Logger
	cron   *cron.Cron
}

func NewExpiryMonitor(tokens claimReader, logger *slog.Logger) *ExpiryMonitor {
	return &ExpiryMonitor{
		tokens: tokens,
		logger: logger.With("component", "expiry_monitor"),
		cron:   cron.New(),
	}
}

// Start schedules the check once a minute and runs one immediately.
func (m *ExpiryMonitor) Start() error {
	if _, err := m.cron.AddFunc("@every 1m", m.Check); err != nil {
		return err
	}
	m.Check()
	m.cron.Start()
	return nil
}

// Stop cancels the scheduled checks.
func (m *ExpiryMonitor) Stop() {
	m.cron.Stop()
}

// Check inspects the stored token once.
func (m *ExpiryMonitor) Check() {
	raw, err := m.tokens.Get()
	if err != nil || raw == "" {
		metrics.SessionExpirySeconds.Set(0)
		return
	}

	claims, err := token.DecodeClaims(raw)
	if err != nil {
		metrics.SessionExpirySeconds.Set(0)
		m.logger.Warn("stored credential is not decodable", "error", err)
		return
	}
	if claims.ExpiresAt.IsZero() {
		return
	}

	left := time.Until(claims.ExpiresAt)
	if left < 0 {
		left = 0
	}
	metrics.SessionExpirySeconds.Set(left.Seconds())

	switch {
	case claims.Expired():
		m.logger.Warn("stored credential has expired", "user_id", claims.UserID)
	case left < expiryWarnWindow:
		m.logger.Warn("stored credential expires soon",
			"user_id", claims.UserID, "expires_in", left.Round(time.Second))
	}
}
