package postgres

import (
	"context"
	"database/sql"

	"issueapi/internal/model"
	"issueapi/internal/repository"
)

// AuditPostgres stores audit entries in issue_audit_logs.
type AuditPostgres struct {
	db *sql.DB
}

func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

func (r *AuditPostgres) Append(ctx context.Context, e *model.AuditLogEntry) error {
	const q = `
		INSERT INTO issue_audit_logs (issue_id, actor_id, action, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q,
		e.IssueID,
		nullString(e.ActorID),
		string(e.Action),
		nullValue(e.OldValue),
		nullValue(e.NewValue),
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *AuditPostgres) ListByIssue(ctx context.Context, issueID string) ([]model.AuditLogEntry, error) {
	const q = `
		SELECT id, issue_id, actor_id, action, old_value, new_value, created_at
		FROM issue_audit_logs
		WHERE issue_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AuditLogEntry, 0)
	for rows.Next() {
		var (
			e                       model.AuditLogEntry
			action                  string
			actor, oldVal, newValue sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.IssueID, &actor, &action, &oldVal, &newValue, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = model.AuditAction(action)
		e.ActorID = nullable(actor)
		e.OldValue = nullable(oldVal)
		e.NewValue = nullable(newValue)
		out = append(out, e)
	}
	return out, rows.Err()
}

// nullValue keeps empty strings; an audit value of "" differs from no value.
func nullValue(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
