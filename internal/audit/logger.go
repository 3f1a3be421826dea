// Package audit records membership, invitation, and organisation mutations.
// Recording is best-effort: audit failures are logged and never fail the
// mutation that triggered them.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"paladin-core/internal/audit/domain"
	auditrepo "paladin-core/internal/audit/repository"
)

// Logger writes a single audit event with explicit action/resource. Used by
// the organisation and invitation services. A nil *Logger is a no-op, so
// wiring audit is optional.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Logger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// Record writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, orgID, actorID uuid.UUID, action domain.Action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New(),
		OrgID:     orgID,
		ActorID:   actorID,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s on %s: %v", action, resource, err)
	}
}
