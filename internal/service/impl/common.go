package impl

import (
	"context"
	"log/slog"
	"time"

	"byod/internal/domain"
	"byod/internal/observability/logging"
	"byod/internal/store"

	"github.com/google/uuid"
)

var nowFunc = func() time.Time { return time.Now().UTC() }

func actorLogger(ctx context.Context, actor domain.Actor) *slog.Logger {
	return logging.FromContext(ctx).With("actor_id", actor.ID.String(), "actor_role", string(actor.Role))
}

type auditEntry struct {
	action     string
	entityType string
	entityID   uuid.UUID
	err        error
	meta       any
}

// audit appends to the audit trail using st, which may be a transaction.
func audit(ctx context.Context, st *store.Store, actor domain.Actor, e auditEntry) error {
	var actorID *uuid.UUID
	if actor.ID != uuid.Nil {
		id := actor.ID
		actorID = &id
	}
	var entityID *uuid.UUID
	if e.entityID != uuid.Nil {
		id := e.entityID
		entityID = &id
	}
	return st.Audit().Record(ctx, &domain.AuditLog{
		ActorID:    actorID,
		Action:     e.action,
		EntityType: e.entityType,
		EntityID:   entityID,
		Outcome:    domain.OutcomeFor(e.err),
		IP:         actor.IP,
		UserAgent:  actor.UserAgent,
	}, e.meta)
}

// auditFailure records a refused or invalid operation after its
// transaction rolled back. Failures to write are logged, not returned.
func auditFailure(ctx context.Context, st *store.Store, actor domain.Actor, e auditEntry) {
	if err := audit(ctx, st, actor, e); err != nil {
		actorLogger(ctx, actor).Error("audit write failed", "action", e.action, "error", err)
	}
}
