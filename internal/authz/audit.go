package authz

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/authgate/authgate/internal/db/models"
)

// AuditMode selects which checks are recorded.
type AuditMode string

const (
	// AuditModeAll records every check.
	AuditModeAll AuditMode = "all"
	// AuditModeDenials records only denied checks.
	AuditModeDenials AuditMode = "denials"
)

// DefaultAuditQueueDepth is used when the configured depth is not positive.
const DefaultAuditQueueDepth = 1024

// Recorder persists permission check audit entries on a background worker.
//
// Record is fire-and-forget from the caller's perspective: it never blocks
// the decision path and a failure to persist never causes the authorization
// decision to fail or flip. Failures are not silent either; they are logged
// as errors and counted in authgate_audit_failures_total so they can be
// alerted on.
type Recorder struct {
	repo  AuditLogRepository
	queue chan models.PermissionAuditLog

	wg        sync.WaitGroup
	closeOnce sync.Once

	// WriteTimeout bounds each persistence attempt. Zero means no timeout.
	WriteTimeout time.Duration
}

// NewRecorder creates a recorder and starts its worker goroutine.
func NewRecorder(repo AuditLogRepository, queueDepth int) *Recorder {
	if queueDepth <= 0 {
		queueDepth = DefaultAuditQueueDepth
	}

	r := &Recorder{
		repo:  repo,
		queue: make(chan models.PermissionAuditLog, queueDepth),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Record enqueues one audit entry. If the queue is full the entry is dropped,
// logged, and counted; the caller's decision is unaffected either way.
func (r *Recorder) Record(entry models.PermissionAuditLog) {
	select {
	case r.queue <- entry:
	default:
		metricAuditFailures.Inc()
		log.Error().
			Str("check_id", entry.CheckID).
			Uint64("user_id", entry.UserID).
			Str("permission", entry.PermissionCode).
			Msg("audit queue full; dropping audit entry")
	}
}

// Close stops accepting entries and blocks until the queue is drained.
// Call after the request-serving layer has shut down.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for entry := range r.queue {
		r.persist(entry)
	}
}

func (r *Recorder) persist(entry models.PermissionAuditLog) {
	ctx := context.Background()

	if r.WriteTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.WriteTimeout)
		defer cancel()
	}

	if err := r.repo.Append(ctx, &entry); err != nil {
		metricAuditFailures.Inc()
		log.Error().Err(err).
			Str("check_id", entry.CheckID).
			Uint64("user_id", entry.UserID).
			Str("permission", entry.PermissionCode).
			Msg("failed to persist audit entry")
	}
}
