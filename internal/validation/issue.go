package validation

import (
	"strings"

	"issueapi/internal/model"
)

// IssueForm carries the text fields of a create or update request as decoded by
// the transport. A nil pointer means the field was absent from the request.
type IssueForm struct {
	Title       *string
	Category    *string
	Description *string
	Lat         *string
	Lng         *string
	Status      *string
	AssignedTo  *string
	MapID       *string
}

// CreateIssueCommand is a validated create request.
type CreateIssueCommand struct {
	Title       string
	Category    string
	Description string
	Lat         float64
	Lng         float64
	MapID       *string
	Attachments map[model.Slot]model.Payload
}

// UpdateIssueCommand is a validated partial update. Nil fields are untouched.
// For AssignedTo and MapID a pointer to "" clears the reference.
type UpdateIssueCommand struct {
	Status      *model.Status
	Description *string
	Category    *string
	AssignedTo  *string
	MapID       *string
	Attachments map[model.Slot]model.Payload
}

// Empty reports whether the command changes nothing.
func (c UpdateIssueCommand) Empty() bool {
	return c.Status == nil && c.Description == nil && c.Category == nil &&
		c.AssignedTo == nil && c.MapID == nil && len(c.Attachments) == 0
}

type createInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Category    string  `json:"category" validate:"required,max=64"`
	Description string  `json:"description" validate:"max=5000"`
	Lat         float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng         float64 `json:"lng" validate:"gte=-180,lte=180"`
	MapID       string  `json:"map_id" validate:"omitempty,uuid"`
}

type updateInput struct {
	Status      string `json:"status" validate:"omitempty,oneof=open in_progress resolved"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"max=64"`
	AssignedTo  string `json:"assigned_to" validate:"omitempty,uuid"`
	MapID       string `json:"map_id" validate:"omitempty,uuid"`
}

// ParseCreate validates a create request. Only the original photo and document
// slots may be supplied at creation time.
func ParseCreate(f IssueForm, files map[model.Slot]model.Payload) (CreateIssueCommand, error) {
	fields := map[string]string{}
	in := createInput{
		Title:       sanitizeText(deref(f.Title)),
		Category:    sanitizeText(deref(f.Category)),
		Description: sanitizeText(deref(f.Description)),
		MapID:       strings.TrimSpace(deref(f.MapID)),
	}

	var ok bool
	if in.Lat, ok = parseCoordinate(deref(f.Lat)); !ok {
		fields["lat"] = "must be a number"
	}
	if in.Lng, ok = parseCoordinate(deref(f.Lng)); !ok {
		fields["lng"] = "must be a number"
	}
	structErrors(in, fields)

	for slot := range files {
		if slot != model.SlotPhoto && slot != model.SlotDocument {
			fields[string(slot)] = "cannot be set when creating an issue"
		}
	}
	if err := failIfAny(fields); err != nil {
		return CreateIssueCommand{}, err
	}

	cmd := CreateIssueCommand{
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Lat:         in.Lat,
		Lng:         in.Lng,
		Attachments: files,
	}
	if in.MapID != "" {
		cmd.MapID = &in.MapID
	}
	return cmd, nil
}

// ParseUpdate validates a partial update. A request that names no field and
// carries no file is rejected.
func ParseUpdate(f IssueForm, files map[model.Slot]model.Payload) (UpdateIssueCommand, error) {
	fields := map[string]string{}
	var cmd UpdateIssueCommand

	in := updateInput{
		Status:      strings.TrimSpace(deref(f.Status)),
		Description: sanitizeText(deref(f.Description)),
		Category:    sanitizeText(deref(f.Category)),
		AssignedTo:  strings.TrimSpace(deref(f.AssignedTo)),
		MapID:       strings.TrimSpace(deref(f.MapID)),
	}
	structErrors(in, fields)

	if f.Title != nil {
		fields["title"] = "cannot be changed"
	}
	if f.Lat != nil || f.Lng != nil {
		fields["location"] = "cannot be changed"
	}
	if f.Status != nil {
		if in.Status == "" {
			fields["status"] = "must be one of open, in_progress, resolved"
		}
		st := model.Status(in.Status)
		cmd.Status = &st
	}
	if f.Category != nil {
		if in.Category == "" {
			fields["category"] = "must not be empty"
		}
		cmd.Category = &in.Category
	}
	if f.Description != nil {
		cmd.Description = &in.Description
	}
	if f.AssignedTo != nil {
		cmd.AssignedTo = &in.AssignedTo
	}
	if f.MapID != nil {
		cmd.MapID = &in.MapID
	}
	for slot := range files {
		if !slot.Valid() {
			fields[string(slot)] = "unknown attachment field"
		}
	}
	cmd.Attachments = files

	if len(fields) == 0 && cmd.Empty() {
		fields["_"] = "no changes supplied"
	}
	if err := failIfAny(fields); err != nil {
		return UpdateIssueCommand{}, err
	}
	return cmd, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
