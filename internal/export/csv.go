// Package export encodes issues as CSV for the export endpoint and issuectl.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"issueapi/internal/model"
)

// Header is the fixed column set. The labels are what existing spreadsheet
// consumers of the export expect.
var Header = []string{
	"ID", "Fecha", "Creado Por", "Estado", "Categoría", "Título", "Descripción",
	"Latitud", "Longitud", "Foto", "Documento",
}

// CSVWriter streams issues as RFC 4180 records.
type CSVWriter struct {
	w    *csv.Writer
	rows int
}

// NewCSV writes the header to w and returns a writer for the rows.
func NewCSV(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	return &CSVWriter{w: cw}, nil
}

// Write appends one issue. It has the shape of the callback taken by
// IssueService.Export.
func (c *CSVWriter) Write(is *model.Issue) error {
	c.rows++
	return c.w.Write(Record(is))
}

// Flush writes any buffered data and reports the first write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Rows is the number of issues written so far.
func (c *CSVWriter) Rows() int { return c.rows }

// Record renders one issue in Header order.
func Record(is *model.Issue) []string {
	return []string{
		is.ID,
		is.CreatedAt.UTC().Format(time.RFC3339),
		creator(is),
		string(is.Status),
		is.Category,
		is.Title,
		is.Description,
		strconv.FormatFloat(is.Lat, 'f', -1, 64),
		strconv.FormatFloat(is.Lng, 'f', -1, 64),
		value(is.PhotoURL),
		value(is.DocumentURL),
	}
}

// Filename is the suggested attachment name for an export taken at t.
func Filename(t time.Time) string {
	return "issues_" + t.UTC().Format("20060102_150405") + ".csv"
}

func creator(is *model.Issue) string {
	if is.CreatorName != nil && *is.CreatorName != "" {
		return *is.CreatorName
	}
	return value(is.CreatedBy)
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
