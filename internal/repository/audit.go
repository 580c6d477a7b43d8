package repository

import (
	"context"

	"issueapi/internal/model"
)

// AuditRepository persists the append-only issue audit trail.
// There is no update or delete; entries go away only with their issue.
type AuditRepository interface {
	// Append inserts e and fills in its ID and CreatedAt.
	Append(ctx context.Context, e *model.AuditLogEntry) error

	// ListByIssue returns the entries of an issue, most recent first.
	ListByIssue(ctx context.Context, issueID string) ([]model.AuditLogEntry, error)
}
