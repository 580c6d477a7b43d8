// Package audit records field-level issue changes. Writes are best-effort:
// a failed entry is logged and counted but never fails the mutation that caused it.
package audit

import (
	"context"

	"go.uber.org/zap"

	"issueapi/internal/metrics"
	"issueapi/internal/model"
	"issueapi/internal/repository"
)

// Change is one field or slot transition.
type Change struct {
	Action model.AuditAction
	Old    *string
	New    *string
}

// Log appends to and reads from the audit trail.
type Log struct {
	repo    repository.AuditRepository
	log     *zap.Logger
	metrics *metrics.Metrics
}

func New(repo repository.AuditRepository, log *zap.Logger, m *metrics.Metrics) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{repo: repo, log: log, metrics: m}
}

// Record appends one entry. actorID may be empty.
func (l *Log) Record(ctx context.Context, issueID, actorID string, c Change) {
	e := &model.AuditLogEntry{
		IssueID:  issueID,
		Action:   c.Action,
		OldValue: c.Old,
		NewValue: c.New,
	}
	if actorID != "" {
		e.ActorID = &actorID
	}
	// The parent mutation has committed; a client hang-up must not drop the entry.
	if err := l.repo.Append(context.WithoutCancel(ctx), e); err != nil {
		l.metrics.AuditFailed()
		l.log.Error("audit_write_failed",
			zap.String("issue_id", issueID),
			zap.String("action", string(c.Action)),
			zap.Error(err),
		)
	}
}

// RecordAll appends changes in order.
func (l *Log) RecordAll(ctx context.Context, issueID, actorID string, changes []Change) {
	for _, c := range changes {
		l.Record(ctx, issueID, actorID, c)
	}
}

// History returns the entries of an issue, most recent first.
func (l *Log) History(ctx context.Context, issueID string) ([]model.AuditLogEntry, error) {
	return l.repo.ListByIssue(ctx, issueID)
}
