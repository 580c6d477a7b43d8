package model

// Slot names one of the four attachment fields of an issue.
type Slot string

const (
	SlotPhoto              Slot = "photo"
	SlotDocument           Slot = "document"
	SlotResolutionPhoto    Slot = "resolution_photo"
	SlotResolutionDocument Slot = "resolution_document"
)

// Slots lists every slot in a stable order.
var Slots = []Slot{SlotPhoto, SlotDocument, SlotResolutionPhoto, SlotResolutionDocument}

// IsImage reports whether the slot holds raster images.
func (s Slot) IsImage() bool {
	return s == SlotPhoto || s == SlotResolutionPhoto
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	switch s {
	case SlotPhoto, SlotDocument, SlotResolutionPhoto, SlotResolutionDocument:
		return true
	}
	return false
}

// AuditAction maps a slot to the audit action recorded when it changes.
func (s Slot) AuditAction() AuditAction {
	switch s {
	case SlotPhoto:
		return ActionOriginalPhotoReplaced
	case SlotDocument:
		return ActionOriginalDocumentReplaced
	case SlotResolutionPhoto:
		return ActionResolutionPhotoAdded
	default:
		return ActionResolutionDocumentAdded
	}
}

// Payload is one uploaded file buffered by the transport layer.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}
