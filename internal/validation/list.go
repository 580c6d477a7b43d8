package validation

import (
	"strconv"
	"strings"
	"time"

	"issueapi/internal/model"
)

const dateLayout = "2006-01-02"

// ListParams is the raw query string of a list or export request.
// Sort is the legacy newest/oldest switch, honoured only when Order is absent.
type ListParams struct {
	Page     string `json:"page"`
	PageSize string `json:"pageSize"`
	Status   string `json:"status" validate:"omitempty,oneof=open in_progress resolved"`
	Category string `json:"category" validate:"max=64"`
	Q        string `json:"q" validate:"max=200"`
	Order    string `json:"order"`
	Sort     string `json:"sort"`
	From     string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ParseListQuery normalises p. Out-of-range pagination is clamped and an
// unknown order falls back to newest-first; malformed filters are rejected.
func ParseListQuery(p ListParams) (model.IssueQuery, error) {
	p.Status = strings.TrimSpace(p.Status)
	p.Category = sanitizeText(p.Category)
	p.Q = strings.TrimSpace(p.Q)
	p.From = strings.TrimSpace(p.From)
	p.To = strings.TrimSpace(p.To)

	fields := map[string]string{}
	structErrors(p, fields)

	q := model.IssueQuery{
		Order:    parseOrder(p.Order, p.Sort),
		Page:     clamp(atoiDefault(p.Page, 1), 1, model.MaxPage),
		PageSize: clamp(atoiDefault(p.PageSize, model.DefaultPageSize), 1, model.MaxPageSize),
	}
	q.Filter.Category = p.Category
	q.Filter.Q = p.Q
	if p.Status != "" {
		st := model.Status(p.Status)
		q.Filter.Status = &st
	}

	if _, bad := fields["from"]; !bad && p.From != "" {
		from, _ := time.Parse(dateLayout, p.From)
		q.Filter.CreatedFrom = &from
	}
	if _, bad := fields["to"]; !bad && p.To != "" {
		to, _ := time.Parse(dateLayout, p.To)
		before := to.AddDate(0, 0, 1)
		q.Filter.CreatedBefore = &before
	}
	if q.Filter.CreatedFrom != nil && q.Filter.CreatedBefore != nil &&
		!q.Filter.CreatedFrom.Before(*q.Filter.CreatedBefore) {
		fields["from"] = "must not be after to"
	}

	if err := failIfAny(fields); err != nil {
		return model.IssueQuery{}, err
	}
	return q, nil
}

func parseOrder(order, sort string) model.Order {
	o := model.Order(strings.ToLower(strings.TrimSpace(order)))
	if o == "" {
		switch strings.ToLower(strings.TrimSpace(sort)) {
		case "oldest":
			o = model.OrderOldest
		default:
			o = model.OrderNewest
		}
	}
	if !o.Valid() {
		return model.OrderNewest
	}
	return o
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
