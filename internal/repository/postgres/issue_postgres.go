package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"issueapi/internal/model"
	"issueapi/internal/repository"
	"issueapi/internal/scope"
)

// IssuePostgres is a PostgreSQL implementation of repository.IssueRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type IssuePostgres struct {
	db *sql.DB
}

// NewIssuePostgres creates a new IssuePostgres repository.
func NewIssuePostgres(db *sql.DB) *IssuePostgres {
	return &IssuePostgres{db: db}
}

var _ repository.IssueRepository = (*IssuePostgres)(nil)

const issueColumns = `i.id, i.title, i.category, i.description, i.lat, i.lng, i.status, i.created_at,
		i.created_by, u.username, i.assigned_to, i.map_id,
		i.photo_url, i.thumb_url, i.document_url,
		i.resolution_photo_url, i.resolution_thumb_url, i.resolution_document_url`

const issueFrom = ` FROM issues i LEFT JOIN users u ON u.id = i.created_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*model.Issue, error) {
	var (
		is                                         model.Issue
		status                                     string
		createdBy, creator, assignedTo, mapID      sql.NullString
		photo, thumb, document, resPhoto, resThumb sql.NullString
		resDocument                                sql.NullString
	)
	if err := row.Scan(
		&is.ID, &is.Title, &is.Category, &is.Description, &is.Lat, &is.Lng, &status, &is.CreatedAt,
		&createdBy, &creator, &assignedTo, &mapID,
		&photo, &thumb, &document,
		&resPhoto, &resThumb, &resDocument,
	); err != nil {
		return nil, err
	}
	is.Status = model.Status(status)
	is.CreatedBy = nullable(createdBy)
	is.CreatorName = nullable(creator)
	is.AssignedTo = nullable(assignedTo)
	is.MapID = nullable(mapID)
	is.PhotoURL = nullable(photo)
	is.ThumbURL = nullable(thumb)
	is.DocumentURL = nullable(document)
	is.ResolutionPhotoURL = nullable(resPhoto)
	is.ResolutionThumbURL = nullable(resThumb)
	is.ResolutionDocumentURL = nullable(resDocument)
	return &is, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create inserts a new issue row and returns the stored record.
func (r *IssuePostgres) Create(ctx context.Context, is *model.Issue) (*model.Issue, error) {
	const q = `
		WITH i AS (
			INSERT INTO issues (title, category, description, lat, lng, status, created_by, assigned_to, map_id,
				photo_url, thumb_url, document_url, resolution_photo_url, resolution_thumb_url, resolution_document_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING *
		)
		SELECT ` + issueColumns + `
		FROM i LEFT JOIN users u ON u.id = i.created_by
	`
	row := r.db.QueryRowContext(ctx, q,
		is.Title,
		is.Category,
		is.Description,
		is.Lat,
		is.Lng,
		string(is.Status),
		nullString(is.CreatedBy),
		nullString(is.AssignedTo),
		nullString(is.MapID),
		nullString(is.PhotoURL),
		nullString(is.ThumbURL),
		nullString(is.DocumentURL),
		nullString(is.ResolutionPhotoURL),
		nullString(is.ResolutionThumbURL),
		nullString(is.ResolutionDocumentURL),
	)
	return scanIssue(row)
}

// FindByID fetches a single issue by its ID.
func (r *IssuePostgres) FindByID(ctx context.Context, id string) (*model.Issue, error) {
	q := `SELECT ` + issueColumns + issueFrom + ` WHERE i.id = $1`
	is, err := scanIssue(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return is, nil
}

// List returns issues using LIMIT/OFFSET pagination and a total count.
func (r *IssuePostgres) List(ctx context.Context, iq model.IssueQuery, pred scope.Predicate) (*repository.PageResult[model.Issue], error) {
	where, args := buildWhere(iq.Filter, pred)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+issueFrom+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	q := `SELECT ` + issueColumns + issueFrom + where +
		` ORDER BY ` + orderBy(iq.Order) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, iq.PageSize, iq.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Issue, 0)
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *is)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Issue]{
		Items: items,
		Total: total,
	}, nil
}

// Export streams every matching row to fn without buffering the result set.
func (r *IssuePostgres) Export(ctx context.Context, iq model.IssueQuery, pred scope.Predicate, fn func(*model.Issue) error) error {
	where, args := buildWhere(iq.Filter, pred)
	q := `SELECT ` + issueColumns + issueFrom + where + ` ORDER BY ` + orderBy(iq.Order)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return err
		}
		if err := fn(is); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Update writes every non-nil patch field in one UPDATE and returns the new row.
func (r *IssuePostgres) Update(ctx context.Context, id string, p repository.IssuePatch) (*model.Issue, error) {
	if p.Empty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.AssignedTo != nil {
		set("assigned_to", *p.AssignedTo)
	}
	if p.MapID != nil {
		set("map_id", *p.MapID)
	}
	for _, c := range []struct {
		col string
		v   *string
	}{
		{"photo_url", p.PhotoURL},
		{"thumb_url", p.ThumbURL},
		{"document_url", p.DocumentURL},
		{"resolution_photo_url", p.ResolutionPhotoURL},
		{"resolution_thumb_url", p.ResolutionThumbURL},
		{"resolution_document_url", p.ResolutionDocumentURL},
	} {
		if c.v != nil {
			set(c.col, nullString(c.v))
		}
	}
	args = append(args, id)

	q := `
		WITH i AS (
			UPDATE issues SET ` + strings.Join(sets, ", ") + fmt.Sprintf(`
			WHERE id = $%d
			RETURNING *
		)`, len(args)) + `
		SELECT ` + issueColumns + `
		FROM i LEFT JOIN users u ON u.id = i.created_by
	`
	is, err := scanIssue(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return is, nil
}

// Delete removes an issue by ID. Audit rows cascade.
func (r *IssuePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM issues WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Categories returns distinct stored categories visible under pred.
func (r *IssuePostgres) Categories(ctx context.Context, pred scope.Predicate) ([]string, error) {
	where, args := buildWhere(model.IssueFilter{}, pred)
	q := `SELECT DISTINCT i.category FROM issues i` + where + ` ORDER BY i.category`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere renders the scope predicate followed by the filter as a WHERE clause.
// The predicate always comes first so that no filter combination can widen it.
func buildWhere(f model.IssueFilter, pred scope.Predicate) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(" WHERE 1=1")
	add := func(cond string, v any) {
		args = append(args, v)
		b.WriteString(" AND ")
		b.WriteString(strings.ReplaceAll(cond, "$?", fmt.Sprintf("$%d", len(args))))
	}

	switch pred.Kind {
	case scope.All:
	case scope.OwnOrAssigned:
		add("(i.created_by = $? OR i.assigned_to = $?)", pred.UserID)
	default:
		b.WriteString(" AND FALSE")
	}

	if f.Status != nil {
		add("i.status = $?", string(*f.Status))
	}
	if f.Category != "" {
		add("i.category = $?", f.Category)
	}
	if f.Q != "" {
		pattern := "%" + likeEscaper.Replace(f.Q) + "%"
		if pred.Privileged {
			add("(i.title ILIKE $? OR i.description ILIKE $? OR u.username ILIKE $?)", pattern)
		} else {
			add("(i.title ILIKE $? OR i.description ILIKE $?)", pattern)
		}
	}
	if f.CreatedFrom != nil {
		add("i.created_at >= $?", *f.CreatedFrom)
	}
	if f.CreatedBefore != nil {
		add("i.created_at < $?", *f.CreatedBefore)
	}
	return b.String(), args
}

func orderBy(o model.Order) string {
	switch o {
	case model.OrderOldest:
		return "i.created_at ASC, i.id ASC"
	case model.OrderCategory:
		return "LOWER(i.category) ASC, i.created_at DESC, i.id DESC"
	case model.OrderStatus:
		return "CASE i.status WHEN 'open' THEN 0 WHEN 'in_progress' THEN 1 WHEN 'resolved' THEN 2 ELSE 9 END ASC, i.created_at DESC, i.id DESC"
	default:
		return "i.created_at DESC, i.id DESC"
	}
}
