package model

import "time"

// AuditAction is the closed set of audit actions.
type AuditAction string

const (
	ActionCreate                   AuditAction = "create"
	ActionStatusChange             AuditAction = "status-change"
	ActionDescriptionChange        AuditAction = "description-change"
	ActionCategoryChange           AuditAction = "category-change"
	ActionAssignmentChange         AuditAction = "assignment-change"
	ActionMapChange                AuditAction = "map-change"
	ActionOriginalPhotoReplaced    AuditAction = "original-photo-replaced"
	ActionOriginalDocumentReplaced AuditAction = "original-document-replaced"
	ActionResolutionPhotoAdded     AuditAction = "resolution-photo-added"
	ActionResolutionDocumentAdded  AuditAction = "resolution-document-added"
)

// AuditLogEntry is an immutable record of one field-level change.
type AuditLogEntry struct {
	ID        int64       `json:"id"`
	IssueID   string      `json:"issue_id"`
	ActorID   *string     `json:"actor_id"`
	Action    AuditAction `json:"action"`
	OldValue  *string     `json:"old_value"`
	NewValue  *string     `json:"new_value"`
	CreatedAt time.Time   `json:"created_at"`
}
