package health_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/abenov/coursehub/internal/health"
	"github.com/prometheus/client_golang/prometheus"
)

type fakePinger struct {
	ping func(ctx context.Context) error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	return p.ping(ctx)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReadiness_APIUp(t *testing.T) {
	api := &fakePinger{ping: func(context.Context) error { return nil }}
	c := health.NewChecker(api, discard(), prometheus.NewRegistry())

	res := c.Readiness(context.Background())

	if res.Status != "up" {
		t.Errorf("status = %q, want up", res.Status)
	}
	if res.Checks["marketplace_api"].Status != "up" {
		t.Errorf("api check = %+v", res.Checks["marketplace_api"])
	}
}

func TestReadiness_APIDown(t *testing.T) {
	api := &fakePinger{ping: func(context.Context) error { return errors.New("connection refused") }}
	c := health.NewChecker(api, discard(), prometheus.NewRegistry())

	res := c.Readiness(context.Background())

	if res.Status != "down" {
		t.Errorf("status = %q, want down", res.Status)
	}
	check := res.Checks["marketplace_api"]
	if check.Status != "down" || check.Error == "" {
		t.Errorf("api check = %+v", check)
	}
}

func TestLiveness_AlwaysUp(t *testing.T) {
	api := &fakePinger{ping: func(context.Context) error { return errors.New("irrelevant") }}
	c := health.NewChecker(api, discard(), prometheus.NewRegistry())

	if res := c.Liveness(context.Background()); res.Status != "up" {
		t.Errorf("status = %q, want up", res.Status)
	}
}
