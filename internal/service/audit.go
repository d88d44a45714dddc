package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/metrics"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
)

// AuditTrail prepares the audit entry for a user mutation before anything
// is written, and announces it once the mutation and the entry have been
// committed together.
type AuditTrail interface {
	Prepare(ctx context.Context, action model.ActionName, description string) (model.LogEntry, error)
	Announce(ctx context.Context, u model.User, entry model.LogEntry, logID uint64)
	ListByUser(ctx context.Context, userID uint64) ([]model.UserLog, error)
}

// AuditStore reads the action lookup and the log rows.  The MySQL
// implementation is repository.AuditRepo.
type AuditStore interface {
	ActionByName(ctx context.Context, name model.ActionName) (model.Action, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.UserLog, error)
}

// EventPublisher forwards audit events to the broker.
type EventPublisher interface {
	PublishUserAudit(ctx context.Context, ev queue.UserAuditEvent) error
}

// Auditor resolves actions and, when a publisher is set, mirrors each
// committed entry onto the user.audit queue.
type Auditor struct {
	store     AuditStore
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditor builds an Auditor.  publisher may be nil to disable events.
func NewAuditor(store AuditStore, publisher EventPublisher, logger *zap.Logger) *Auditor {
	return &Auditor{
		store:     store,
		publisher: publisher,
		logger:    logger.Named("Auditor"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Prepare resolves action to its row and stamps the entry.  An unknown
// action fails here, before the caller changes anything.
func (a *Auditor) Prepare(ctx context.Context, action model.ActionName, description string) (model.LogEntry, error) {
	act, err := a.store.ActionByName(ctx, action)
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("resolve action %q: %w", action, err)
	}
	return model.LogEntry{
		ActionID:    act.ID,
		Action:      action,
		Description: description,
		CreatedAt:   a.now(),
	}, nil
}

// Announce logs the committed entry and publishes it.  Publish failures
// are logged only.
func (a *Auditor) Announce(ctx context.Context, u model.User, entry model.LogEntry, logID uint64) {
	a.logger.Info("audit entry written",
		zap.Uint64("log_id", logID),
		zap.Uint64("user_id", u.ID),
		zap.String("action", string(entry.Action)),
		zap.String("description", entry.Description))

	if a.publisher == nil {
		metrics.ObserveAuditEntry(string(entry.Action), false)
		return
	}
	ev := queue.UserAuditEvent{
		EventID:     uuid.NewString(),
		LogID:       logID,
		UserID:      u.ID,
		Username:    u.Username,
		Action:      string(entry.Action),
		Description: entry.Description,
		OccurredAt:  entry.CreatedAt.Format(time.RFC3339),
	}
	err := a.publisher.PublishUserAudit(ctx, ev)
	if err != nil {
		a.logger.Warn("audit event not published", zap.Uint64("log_id", logID), zap.Error(err))
	}
	metrics.ObserveAuditEntry(string(entry.Action), err == nil)
}

// ListByUser returns the stored entries for one user.
func (a *Auditor) ListByUser(ctx context.Context, userID uint64) ([]model.UserLog, error) {
	return a.store.ListByUser(ctx, userID)
}
