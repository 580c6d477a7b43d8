package repository

import (
	"context"
	"database/sql"
	"errors"

	"issueapi/internal/model"
	"issueapi/internal/scope"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("not found")

// IssueRepository defines data access for issues using SQL queries only.
// Every read that returns more than one row takes a scope.Predicate and conjoins it;
// the repository never decides who the caller is.
type IssueRepository interface {
	// Create inserts a new issue and returns the stored row.
	Create(ctx context.Context, is *model.Issue) (*model.Issue, error)

	// FindByID returns an issue by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Issue, error)

	// List returns one page of issues matching q and pred, plus the full filtered count.
	List(ctx context.Context, q model.IssueQuery, pred scope.Predicate) (*PageResult[model.Issue], error)

	// Export streams every issue matching q and pred in q.Order, ignoring pagination.
	// Iteration stops at the first error returned by fn.
	Export(ctx context.Context, q model.IssueQuery, pred scope.Predicate, fn func(*model.Issue) error) error

	// Update applies patch in a single statement and returns the updated row, or ErrNotFound.
	Update(ctx context.Context, id string, patch IssuePatch) (*model.Issue, error)

	// Delete removes an issue by ID. It returns ErrNotFound if no row was deleted.
	Delete(ctx context.Context, id string) error

	// Categories returns the distinct categories visible under pred.
	Categories(ctx context.Context, pred scope.Predicate) ([]string, error)
}

// IssuePatch lists the columns to change. Nil fields are left untouched.
// AssignedTo and MapID use sql.NullString so that a reference can be cleared.
type IssuePatch struct {
	Status      *model.Status
	Description *string
	Category    *string
	AssignedTo  *sql.NullString
	MapID       *sql.NullString

	PhotoURL              *string
	ThumbURL              *string
	DocumentURL           *string
	ResolutionPhotoURL    *string
	ResolutionThumbURL    *string
	ResolutionDocumentURL *string
}

// Empty reports whether the patch changes nothing.
func (p IssuePatch) Empty() bool {
	return p.Status == nil && p.Description == nil && p.Category == nil &&
		p.AssignedTo == nil && p.MapID == nil &&
		p.PhotoURL == nil && p.ThumbURL == nil && p.DocumentURL == nil &&
		p.ResolutionPhotoURL == nil && p.ResolutionThumbURL == nil && p.ResolutionDocumentURL == nil
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
