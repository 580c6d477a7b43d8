package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"issueapi/internal/apperr"
	"issueapi/internal/model"
	"issueapi/internal/validation"
)

// fileFields maps multipart field names to attachment slots. "file" and
// "resolution_doc" are accepted for older clients.
var fileFields = map[string]model.Slot{
	"photo":               model.SlotPhoto,
	"document":            model.SlotDocument,
	"file":                model.SlotDocument,
	"resolution_photo":    model.SlotResolutionPhoto,
	"resolution_document": model.SlotResolutionDocument,
	"resolution_doc":      model.SlotResolutionDocument,
}

var textFields = []string{"title", "category", "description", "lat", "lng", "status", "assigned_to", "map_id"}

// decodeIssueForm reads the text fields and files of a create or update
// request. Multipart, urlencoded and JSON bodies are accepted; only multipart
// bodies can carry files. Each file is buffered up to maxBytes+1 so that the
// attachment store can reject oversize uploads without reading them whole.
func decodeIssueForm(c *fiber.Ctx, maxBytes int64) (validation.IssueForm, map[model.Slot]model.Payload, error) {
	var (
		lookup func(string) (string, bool)
		files  map[model.Slot]model.Payload
	)

	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return validation.IssueForm{}, nil, apperr.ValidationField("_", "malformed multipart body")
		}
		lookup = func(k string) (string, bool) {
			v, ok := form.Value[k]
			if !ok || len(v) == 0 {
				return "", false
			}
			return v[0], true
		}
		if files, err = readFiles(form.File, maxBytes); err != nil {
			return validation.IssueForm{}, nil, err
		}
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		values, err := decodeJSONFields(c.Body())
		if err != nil {
			return validation.IssueForm{}, nil, err
		}
		lookup = func(k string) (string, bool) {
			v, ok := values[k]
			return v, ok
		}
	default:
		args := c.Request().PostArgs()
		lookup = func(k string) (string, bool) {
			if !args.Has(k) {
				return "", false
			}
			return string(args.Peek(k)), true
		}
	}

	vals := make(map[string]*string, len(textFields))
	for _, k := range textFields {
		if v, ok := lookup(k); ok {
			vals[k] = &v
		}
	}
	return validation.IssueForm{
		Title:       vals["title"],
		Category:    vals["category"],
		Description: vals["description"],
		Lat:         vals["lat"],
		Lng:         vals["lng"],
		Status:      vals["status"],
		AssignedTo:  vals["assigned_to"],
		MapID:       vals["map_id"],
	}, files, nil
}

func readFiles(parts map[string][]*multipart.FileHeader, maxBytes int64) (map[model.Slot]model.Payload, error) {
	files := map[model.Slot]model.Payload{}
	seen := map[model.Slot]string{}
	for name, headers := range parts {
		if len(headers) == 0 {
			continue
		}
		slot, ok := fileFields[name]
		if !ok {
			return nil, apperr.ValidationField(name, "unknown attachment field")
		}
		if len(headers) > 1 {
			return nil, apperr.ValidationField(name, "only one file per field")
		}
		if prev, dup := seen[slot]; dup {
			return nil, apperr.ValidationField(name, fmt.Sprintf("duplicates %s", prev))
		}
		seen[slot] = name

		p, err := readPayload(headers[0], maxBytes)
		if err != nil {
			return nil, apperr.AttachmentRejected(string(slot), "file could not be read")
		}
		files[slot] = p
	}
	if len(files) == 0 {
		return nil, nil
	}
	return files, nil
}

func readPayload(fh *multipart.FileHeader, maxBytes int64) (model.Payload, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Payload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return model.Payload{}, err
	}
	return model.Payload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// decodeJSONFields flattens a JSON object to strings so that JSON and form
// bodies share one validation path. null becomes "", which clears references.
func decodeJSONFields(body []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, apperr.ValidationField("_", "malformed JSON body")
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = fmt.Sprint(t)
		default:
			return nil, apperr.ValidationField(k, "must be a scalar value")
		}
	}
	return out, nil
}
