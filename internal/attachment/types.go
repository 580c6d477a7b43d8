package attachment

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"issueapi/internal/model"
)

type allowlist struct {
	exts  map[string]string // extension -> canonical media type
	types map[string]string // media type -> canonical extension
}

var (
	imageTypes = allowlist{
		exts: map[string]string{
			".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
			".webp": "image/webp", ".gif": "image/gif",
		},
		types: map[string]string{
			"image/jpeg": ".jpg", "image/pjpeg": ".jpg", "image/png": ".png",
			"image/webp": ".webp", "image/gif": ".gif",
		},
	}
	documentTypes = allowlist{
		exts: map[string]string{
			".pdf": "application/pdf", ".txt": "text/plain",
			".md": "text/markdown", ".markdown": "text/markdown",
		},
		types: map[string]string{
			"application/pdf": ".pdf", "text/plain": ".txt",
			"text/markdown": ".md", "text/x-markdown": ".md",
		},
	}
)

func allowlistFor(slot model.Slot) allowlist {
	if slot.IsImage() {
		return imageTypes
	}
	return documentTypes
}

// filenamePrefix is the leading component of generated names.
func filenamePrefix(slot model.Slot) string {
	if slot.IsImage() {
		return "photo"
	}
	return "doc"
}

// classify decides whether p is acceptable for slot. Either the client
// extension or the declared media type must be on the allowlist. It returns the
// extension and content type to store the file under.
func classify(slot model.Slot, p model.Payload) (ext, contentType string, ok bool) {
	list := allowlistFor(slot)

	clientExt := strings.ToLower(filepath.Ext(p.Filename))
	declared := ""
	if mt, _, err := mime.ParseMediaType(p.ContentType); err == nil {
		declared = strings.ToLower(mt)
	}

	extType, extOK := list.exts[clientExt]
	declExt, declOK := list.types[declared]
	if !extOK && !declOK {
		return "", "", false
	}

	if extOK {
		ext, contentType = clientExt, extType
	} else {
		ext, contentType = declExt, declared
	}

	// Prefer what the bytes say when it is itself allowed for the slot.
	// Markdown sniffs as plain text and keeps its declared type.
	sniffed := strings.ToLower(strings.SplitN(mimetype.Detect(p.Data).String(), ";", 2)[0])
	if sniffExt, known := list.types[sniffed]; known && list.exts[ext] != sniffed {
		if !(sniffed == "text/plain" && contentType == "text/markdown") {
			ext, contentType = sniffExt, sniffed
		}
	}
	return ext, contentType, true
}
