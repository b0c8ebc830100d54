package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/metrics"

	"golang.org/x/sync/semaphore"
)

// queuedPerWorker caps pending deliveries at maxInflight*queuedPerWorker.
const queuedPerWorker = 64

// NotificationDispatcher delivers registration confirmations after the admission has
// committed. Delivery runs in the background on a context detached from the request,
// bounded by maxInflight concurrent deliveries and a per-delivery timeout. At most
// maxInflight*queuedPerWorker deliveries are pending at once; beyond that new ones
// are dropped. Failures are logged and counted; they never reach the caller.
type NotificationDispatcher struct {
	notifier domain.RegistrationNotifier
	sem      *semaphore.Weighted
	queue    *semaphore.Weighted
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

func NewNotificationDispatcher(
	notifier domain.RegistrationNotifier,
	maxInflight int64,
	timeout time.Duration,
	logger *slog.Logger,
	m *metrics.Metrics,
) *NotificationDispatcher {
	if maxInflight < 1 {
		maxInflight = 1
	}
	return &NotificationDispatcher{
		notifier: notifier,
		sem:      semaphore.NewWeighted(maxInflight),
		queue:    semaphore.NewWeighted(maxInflight * queuedPerWorker),
		timeout:  timeout,
		logger:   logger,
		metrics:  m,
	}
}

// Dispatch schedules the confirmation for reg and returns immediately.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, event *domain.Event, reg *domain.EventRegistration) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.metrics.IncrementNotification(metrics.OutcomeDropped)
		d.logger.WarnContext(ctx, "registration notification dropped, dispatcher closed",
			"event_id", reg.EventID, "user_id", reg.UserID)
		return
	}
	if !d.queue.TryAcquire(1) {
		d.mu.Unlock()
		d.metrics.IncrementNotification(metrics.OutcomeDropped)
		d.logger.WarnContext(ctx, "registration notification dropped, queue full",
			"event_id", reg.EventID, "user_id", reg.UserID)
		return
	}
	d.pending.Add(1)
	d.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer d.pending.Done()
		defer d.queue.Release(1)
		d.deliver(detached, event, reg)
	}()
}

func (d *NotificationDispatcher) deliver(ctx context.Context, event *domain.Event, reg *domain.EventRegistration) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.fail(ctx, reg, err)
		return
	}
	defer d.sem.Release(1)
	d.metrics.NotificationsInflight.Inc()
	defer d.metrics.NotificationsInflight.Dec()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("notifier panic: %v", r)
			}
		}()
		return d.notifier.NotifyRegistered(ctx, event, reg)
	}()
	if err != nil {
		d.fail(ctx, reg, err)
		return
	}
	d.metrics.IncrementNotification(metrics.OutcomeSent)
	d.logger.DebugContext(ctx, "registration notification sent",
		"event_id", reg.EventID, "user_id", reg.UserID, "registration_id", reg.ID)
}

func (d *NotificationDispatcher) fail(ctx context.Context, reg *domain.EventRegistration, err error) {
	d.metrics.IncrementNotification(metrics.OutcomeFailed)
	d.logger.WarnContext(ctx, "registration notification failed",
		"event_id", reg.EventID, "user_id", reg.UserID, "registration_id", reg.ID, "err", err)
}

// Shutdown stops accepting new notifications and waits for the pending ones,
// or until ctx is done.
func (d *NotificationDispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain notifications: %w", ctx.Err())
	}
}
