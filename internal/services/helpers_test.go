package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	testNow    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time { return testNow }

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// recordingHandler keeps every log record so tests can assert on them.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// find returns the attributes of the first record with the given message.
func (h *recordingHandler) find(msg string) (map[string]any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Message != msg {
			continue
		}
		attrs := map[string]any{"level": r.Level}
		r.Attrs(func(a slog.Attr) bool {
			attrs[a.Key] = a.Value.Any()
			return true
		})
		return attrs, true
	}
	return nil, false
}

// fakeNotifier records deliveries. When block is set, each delivery waits for it to close.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []*domain.EventRegistration
	err   error
	block chan struct{}
	panic bool
}

func (f *fakeNotifier) NotifyRegistered(ctx context.Context, _ *domain.Event, reg *domain.EventRegistration) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.panic {
		panic("smtp exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, reg)
	return f.err
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// failingAdmitRepo fails Admit with err and delegates everything else.
type failingAdmitRepo struct {
	domain.EventRegistrationRepository
	err error
}

func (f *failingAdmitRepo) Admit(context.Context, *domain.EventRegistration, time.Time) error {
	return f.err
}
