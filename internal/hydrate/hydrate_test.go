package hydrate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/hydrate"
	"github.com/abenov/coursehub/internal/session"
)

type fakeTokens struct {
	tok string
	err error
}

func (f *fakeTokens) Get() (string, error) { return f.tok, f.err }

type fakeSession struct {
	state session.State
	fetch func(ctx context.Context, tok string) error
}

func (f *fakeSession) State() session.State { return f.state }

func (f *fakeSession) FetchUserData(ctx context.Context, tok string) error {
	return f.fetch(ctx, tok)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitReady(t *testing.T, c *hydrate.Controller) {
	t.Helper()
	select {
	case <-c.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("render gate never released")
	}
}

func TestRun_NoStoredToken_NoFetchAndImmediateReady(t *testing.T) {
	sess := &fakeSession{
		fetch: func(context.Context, string) error {
			t.Error("fetch issued with no stored token")
			return nil
		},
	}
	c := hydrate.NewController(&fakeTokens{}, sess, discard())

	c.Run(context.Background())
	waitReady(t, c)
}

func TestRun_StoredTokenNoCachedUser_ExactlyOneFetch(t *testing.T) {
	fetches := 0
	sess := &fakeSession{
		fetch: func(_ context.Context, tok string) error {
			fetches++
			if tok != "tok-1" {
				t.Errorf("fetched with token %q", tok)
			}
			return nil
		},
	}
	c := hydrate.NewController(&fakeTokens{tok: "tok-1"}, sess, discard())

	c.Run(context.Background())
	c.Run(context.Background()) // remount; must not fetch again
	waitReady(t, c)

	if fetches != 1 {
		t.Errorf("fetches = %d, want exactly 1", fetches)
	}
}

func TestRun_SessionAlreadyPopulated_SkipsFetch(t *testing.T) {
	sess := &fakeSession{
		state: session.State{User: &session.AuthPayload{
			User:  &domain.User{ID: "u-1"},
			Token: "tok-1",
		}},
		fetch: func(context.Context, string) error {
			t.Error("redundant fetch for a populated session")
			return nil
		},
	}
	c := hydrate.NewController(&fakeTokens{tok: "tok-1"}, sess, discard())

	c.Run(context.Background())
	waitReady(t, c)
}

func TestRun_FetchError_StillReleasesGate(t *testing.T) {
	sess := &fakeSession{
		fetch: func(context.Context, string) error {
			return errors.New("profile fetch failed")
		},
	}
	c := hydrate.NewController(&fakeTokens{tok: "tok-1"}, sess, discard())

	c.Run(context.Background())
	waitReady(t, c)
}

func TestRun_TokenReadError_StillReleasesGate(t *testing.T) {
	sess := &fakeSession{
		fetch: func(context.Context, string) error {
			t.Error("fetch issued after a failed token read")
			return nil
		},
	}
	c := hydrate.NewController(&fakeTokens{err: errors.New("disk gone")}, sess, discard())

	c.Run(context.Background())
	waitReady(t, c)
}
