// Package activity records signup, login and profile-update events.
//
// Recording is a non-blocking side effect: Record returns before the write
// happens, and a failed write is logged and counted, never returned to the
// caller. Callers must not depend on an event being persisted.
package activity

import (
	"context"
	"sync"
	"time"

	"Backend-PMS/src/logger"
	"Backend-PMS/src/metrics"
	"Backend-PMS/src/models"
)

// EventStore appends login events.
type EventStore interface {
	Insert(ctx context.Context, event *models.LoginEvent) error
}

// Recorder writes events on background goroutines bounded by timeout.
type Recorder struct {
	store   EventStore
	logger  *logger.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewRecorder creates a Recorder. A zero timeout defaults to 5s.
func NewRecorder(store EventStore, log *logger.Logger, m *metrics.Metrics, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		store:   store,
		logger:  log,
		metrics: m,
		timeout: timeout,
		now:     time.Now,
	}
}

// Record schedules an event write and returns immediately. The write keeps
// ctx's values but not its cancellation, so it outlives the request.
func (r *Recorder) Record(ctx context.Context, email string, role models.Role, kind models.ActivityKind) {
	event := models.LoginEvent{
		Email:     email,
		Role:      role,
		Activity:  kind,
		CreatedAt: r.now().UTC(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.store.Insert(writeCtx, &event); err != nil {
			r.logger.Warn("Activity recorder: failed to record activity",
				"email", email,
				"role", role,
				"activity", kind,
				"error", err.Error())
			r.metrics.AuditFailure()
			return
		}
		r.logger.Debug("Activity recorder: activity recorded",
			"email", email,
			"role", role,
			"activity", kind)
	}()
}

// Wait blocks until every scheduled write has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
