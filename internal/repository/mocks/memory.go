package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"issueapi/internal/model"
	"issueapi/internal/repository"
	"issueapi/internal/scope"
)

// MemIssueRepository is an in-memory IssueRepository for orchestration tests.
// It applies the scope predicate but only the status filter; query shape is
// covered by the postgres tests.
type MemIssueRepository struct {
	mu        sync.Mutex
	rows      map[string]model.Issue
	seq       int
	Now       func() time.Time
	UpdateErr error
	CreateErr error
	Updates   int
}

func NewMemIssueRepository() *MemIssueRepository {
	return &MemIssueRepository{rows: map[string]model.Issue{}, Now: time.Now}
}

var _ repository.IssueRepository = (*MemIssueRepository)(nil)

// Put seeds a row as-is.
func (r *MemIssueRepository) Put(is model.Issue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[is.ID] = is
}

func (r *MemIssueRepository) Create(ctx context.Context, is *model.Issue) (*model.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	r.seq++
	out := *is
	out.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.seq)
	out.CreatedAt = r.Now()
	r.rows[out.ID] = out
	return &out, nil
}

func (r *MemIssueRepository) FindByID(ctx context.Context, id string) (*model.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	is, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &is, nil
}

func (r *MemIssueRepository) matching(f model.IssueFilter, pred scope.Predicate) []model.Issue {
	var out []model.Issue
	for _, is := range r.rows {
		if !pred.CanRead(&is) {
			continue
		}
		if f.Status != nil && is.Status != *f.Status {
			continue
		}
		out = append(out, is)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemIssueRepository) List(ctx context.Context, q model.IssueQuery, pred scope.Predicate) (*repository.PageResult[model.Issue], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(q.Filter, pred)
	lo := min(q.Offset(), len(all))
	hi := min(lo+q.PageSize, len(all))
	return &repository.PageResult[model.Issue]{Items: append([]model.Issue{}, all[lo:hi]...), Total: len(all)}, nil
}

func (r *MemIssueRepository) Export(ctx context.Context, q model.IssueQuery, pred scope.Predicate, fn func(*model.Issue) error) error {
	r.mu.Lock()
	all := r.matching(q.Filter, pred)
	r.mu.Unlock()
	for i := range all {
		if err := fn(&all[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemIssueRepository) Update(ctx context.Context, id string, p repository.IssuePatch) (*model.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return nil, r.UpdateErr
	}
	is, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.Updates++
	if p.Status != nil {
		is.Status = *p.Status
	}
	if p.Description != nil {
		is.Description = *p.Description
	}
	if p.Category != nil {
		is.Category = *p.Category
	}
	if p.AssignedTo != nil {
		is.AssignedTo = nil
		if p.AssignedTo.Valid {
			v := p.AssignedTo.String
			is.AssignedTo = &v
		}
	}
	if p.MapID != nil {
		is.MapID = nil
		if p.MapID.Valid {
			v := p.MapID.String
			is.MapID = &v
		}
	}
	setURL := func(dst **string, v *string) {
		if v != nil {
			s := *v
			*dst = &s
		}
	}
	setURL(&is.PhotoURL, p.PhotoURL)
	setURL(&is.ThumbURL, p.ThumbURL)
	setURL(&is.DocumentURL, p.DocumentURL)
	setURL(&is.ResolutionPhotoURL, p.ResolutionPhotoURL)
	setURL(&is.ResolutionThumbURL, p.ResolutionThumbURL)
	setURL(&is.ResolutionDocumentURL, p.ResolutionDocumentURL)
	r.rows[id] = is
	return &is, nil
}

func (r *MemIssueRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemIssueRepository) Categories(ctx context.Context, pred scope.Predicate) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, is := range r.matching(model.IssueFilter{}, pred) {
		if !seen[is.Category] {
			seen[is.Category] = true
			out = append(out, is.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// MemAuditRepository is an in-memory AuditRepository.
type MemAuditRepository struct {
	mu        sync.Mutex
	Entries   []model.AuditLogEntry
	AppendErr error
}

var _ repository.AuditRepository = (*MemAuditRepository)(nil)

func (r *MemAuditRepository) Append(ctx context.Context, e *model.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AppendErr != nil {
		return r.AppendErr
	}
	e.ID = int64(len(r.Entries) + 1)
	e.CreatedAt = time.Now()
	r.Entries = append(r.Entries, *e)
	return nil
}

func (r *MemAuditRepository) ListByIssue(ctx context.Context, issueID string) ([]model.AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.AuditLogEntry, 0)
	for i := len(r.Entries) - 1; i >= 0; i-- {
		if r.Entries[i].IssueID == issueID {
			out = append(out, r.Entries[i])
		}
	}
	return out, nil
}

// ForIssue returns the entries of issueID in insertion order.
func (r *MemAuditRepository) ForIssue(issueID string) []model.AuditLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditLogEntry
	for _, e := range r.Entries {
		if e.IssueID == issueID {
			out = append(out, e)
		}
	}
	return out
}
