package model

import "time"

// Status is the workflow state of an issue. Any transition is permitted.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Rank orders statuses for the "status" sort: open, in_progress, resolved.
func (s Status) Rank() int {
	switch s {
	case StatusOpen:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved:
		return 2
	}
	return 9
}

// Issue is a reported, trackable unit of work.
// Attachment URLs are nil when the slot is empty. ThumbURL is non-nil iff
// PhotoURL is non-nil and points at a raster image (same for the resolution pair).
type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	CreatedBy   *string `json:"created_by"`
	CreatorName *string `json:"creator_name,omitempty"`
	AssignedTo  *string `json:"assigned_to"`
	MapID       *string `json:"map_id"`

	PhotoURL              *string `json:"photo_url"`
	ThumbURL              *string `json:"thumb_url"`
	DocumentURL           *string `json:"document_url"`
	ResolutionPhotoURL    *string `json:"resolution_photo_url"`
	ResolutionThumbURL    *string `json:"resolution_thumb_url"`
	ResolutionDocumentURL *string `json:"resolution_document_url"`
}

// AttachmentURLs returns every non-nil file URL referenced by the issue,
// derived thumbnails excluded (they are removed together with their photo).
func (i *Issue) AttachmentURLs() []string {
	var out []string
	for _, u := range []*string{i.PhotoURL, i.DocumentURL, i.ResolutionPhotoURL, i.ResolutionDocumentURL} {
		if u != nil && *u != "" {
			out = append(out, *u)
		}
	}
	return out
}

// OwnedBy reports whether userID created the issue.
func (i *Issue) OwnedBy(userID string) bool {
	return userID != "" && i.CreatedBy != nil && *i.CreatedBy == userID
}

// AssignedToUser reports whether userID is the issue's assignee.
func (i *Issue) AssignedToUser(userID string) bool {
	return userID != "" && i.AssignedTo != nil && *i.AssignedTo == userID
}
