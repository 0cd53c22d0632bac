// Package watch observes out-of-band changes to the credential: edits to
// the token file made by other processes of the app, and the approach of
// the token's own expiry. Both observers log and count; neither mutates
// session state. Forcing a resync on an external change is a known gap.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/abenov/coursehub/internal/metrics"
	"github.com/fsnotify/fsnotify"
)

// EventKind classifies one external token change.
type EventKind string

const (
	KindCleared EventKind = "cleared"
	KindSet     EventKind = "set"
	KindChanged EventKind = "changed"
	KindNone    EventKind = ""
)

// Classify compares the token before and after a file event.
func Classify(prev, cur string) EventKind {
	switch {
	case prev == cur:
		return KindNone
	case cur == "":
		return KindCleared
	case prev == "":
		return KindSet
	default:
		return KindChanged
	}
}

type tokenReader interface {
	Get() (string, error)
	Path() string
}

// Listener watches the token file for writes made by other processes.
type Listener struct {
	tokens tokenReader
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	last   string
}

func NewListener(tokens tokenReader, logger *slog.Logger) (*Listener, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Listener{
		tokens: tokens,
		fsw:    fsw,
		logger: logger.With("component", "token_watch"),
	}, nil
}

// Start begins observing and returns immediately. The token's directory is
// watched rather than the file itself: atomic writes replace the file, and
// a watch on the old inode would go stale.
func (l *Listener) Start(ctx context.Context) error {
	dir := filepath.Dir(l.tokens.Path())
	if err := l.fsw.Add(dir); err != nil {
		return err
	}

	if tok, err := l.tokens.Get(); err == nil {
		l.last = tok
	}

	go l.loop(ctx)
	l.logger.Debug("token watcher started", "dir", dir)
	return nil
}

func (l *Listener) loop(ctx context.Context) {
	path := filepath.Clean(l.tokens.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-l.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			l.handle(ev)
		case err, ok := <-l.fsw.Errors:
			if !ok {
				return
			}
			l.logger.Warn("token watcher error", "error", err)
		}
	}
}

func (l *Listener) handle(ev fsnotify.Event) {
	cur, err := l.tokens.Get()
	if err != nil {
		l.logger.Warn("read token after change", "error", err)
		return
	}

	kind := Classify(l.last, cur)
	l.last = cur
	if kind == KindNone {
		return
	}

	// Observation only. A stricter implementation would re-run hydration
	// (on set/changed) or force a logout (on cleared).
	metrics.TokenStoreEventsTotal.WithLabelValues(string(kind)).Inc()
	l.logger.Info("credential changed outside this process",
		"kind", string(kind), "op", ev.Op.String())
}

// Close tears down the file watcher.
func (l *Listener) Close() error {
	return l.fsw.Close()
}
