package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issueapi/internal/model"
	"issueapi/internal/repository"
	"issueapi/internal/scope"
)

var issueCols = []string{
	"id", "title", "category", "description", "lat", "lng", "status", "created_at",
	"created_by", "username", "assigned_to", "map_id",
	"photo_url", "thumb_url", "document_url",
	"resolution_photo_url", "resolution_thumb_url", "resolution_document_url",
}

func issueRow(rows *sqlmock.Rows, id string, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "Pothole", "roads", "deep", 40.4, -3.7, "open", created,
		"u1", "alice", nil, nil,
		"/uploads/photo_1_a.jpg", "/uploads/thumbs/photo_1_a.jpg.jpg", nil,
		nil, nil, nil)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func sp(s string) *string { return &s }

func TestIssuePostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)
	now := time.Now().UTC()

	in := &model.Issue{
		Title:       "Pothole",
		Category:    "roads",
		Description: "deep",
		Lat:         40.4,
		Lng:         -3.7,
		Status:      model.StatusOpen,
		CreatedBy:   sp("u1"),
		PhotoURL:    sp("/uploads/photo_1_a.jpg"),
		ThumbURL:    sp("/uploads/thumbs/photo_1_a.jpg.jpg"),
	}

	mock.ExpectQuery("INSERT INTO issues").
		WithArgs("Pothole", "roads", "deep", 40.4, -3.7, "open", "u1", nil, nil,
			"/uploads/photo_1_a.jpg", "/uploads/thumbs/photo_1_a.jpg.jpg", nil, nil, nil, nil).
		WillReturnRows(issueRow(sqlmock.NewRows(issueCols), "issue-1", now))

	out, err := repo.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "issue-1", out.ID)
	assert.Equal(t, model.StatusOpen, out.Status)
	require.NotNil(t, out.CreatorName)
	assert.Equal(t, "alice", *out.CreatorName)
	assert.Nil(t, out.DocumentURL)
	assert.Nil(t, out.AssignedTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssuePostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1")).
			WithArgs("issue-1").
			WillReturnRows(issueRow(sqlmock.NewRows(issueCols), "issue-1", time.Now()))

		is, err := repo.FindByID(ctx, "issue-1")

		assert.NoError(t, err)
		assert.Equal(t, "issue-1", is.ID)
		require.NotNil(t, is.ThumbURL)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		is, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, is)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssuePostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)
	ctx := context.Background()

	status := model.StatusOpen
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := model.IssueQuery{
		Filter:   model.IssueFilter{Status: &status, Q: "50%_off", CreatedFrom: &from},
		Order:    model.OrderStatus,
		Page:     2,
		PageSize: 5,
	}
	pred := scope.For(model.Actor{ID: "u1", Role: model.RoleUser})

	where := ` WHERE 1=1 AND (i.created_by = $1 OR i.assigned_to = $1) AND i.status = $2` +
		` AND (i.title ILIKE $3 OR i.description ILIKE $3) AND i.created_at >= $4`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM issues i LEFT JOIN users u ON u.id = i.created_by` + where)).
		WithArgs("u1", "open", `%50\%\_off%`, from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	mock.ExpectQuery(regexp.QuoteMeta(where+` ORDER BY CASE i.status`) + ".+" + regexp.QuoteMeta(`LIMIT $5 OFFSET $6`)).
		WithArgs("u1", "open", `%50\%\_off%`, from, 5, 5).
		WillReturnRows(issueRow(sqlmock.NewRows(issueCols), "issue-6", time.Now()))

	res, err := repo.List(ctx, q, pred)

	require.NoError(t, err)
	assert.Equal(t, 7, res.Total)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssuePostgres_List_Error(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("db down"))

	res, err := repo.List(context.Background(), model.IssueQuery{Page: 1, PageSize: 10}, scope.Predicate{Kind: scope.All})

	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestBuildWhere(t *testing.T) {
	status := model.StatusResolved
	before := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	admin := scope.For(model.Actor{ID: "a1", Role: model.RoleAdmin})
	user := scope.For(model.Actor{ID: "u1"})

	tests := []struct {
		name     string
		filter   model.IssueFilter
		pred     scope.Predicate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "privileged without filters",
			pred:    admin,
			wantSQL: " WHERE 1=1",
		},
		{
			name:    "no identity matches nothing",
			pred:    scope.For(model.Actor{}),
			wantSQL: " WHERE 1=1 AND FALSE",
		},
		{
			name:     "privileged search includes creator name",
			filter:   model.IssueFilter{Q: "bob"},
			pred:     admin,
			wantSQL:  " WHERE 1=1 AND (i.title ILIKE $1 OR i.description ILIKE $1 OR u.username ILIKE $1)",
			wantArgs: []any{"%bob%"},
		},
		{
			name:     "standard scope comes first",
			filter:   model.IssueFilter{Status: &status, Category: "roads", CreatedBefore: &before},
			pred:     user,
			wantSQL:  " WHERE 1=1 AND (i.created_by = $1 OR i.assigned_to = $1) AND i.status = $2 AND i.category = $3 AND i.created_at < $4",
			wantArgs: []any{"u1", "resolved", "roads", before},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlStr, args := buildWhere(tt.filter, tt.pred)
			assert.Equal(t, tt.wantSQL, sqlStr)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

// Whatever the filter combination, a standard actor's query is narrowed to rows
// they created or were assigned.
func TestBuildWhere_StandardScopeAlwaysApplied(t *testing.T) {
	status := model.StatusOpen
	now := time.Now()
	pred := scope.For(model.Actor{ID: "u9"})
	const clause = " WHERE 1=1 AND (i.created_by = $1 OR i.assigned_to = $1)"

	for mask := 0; mask < 32; mask++ {
		var f model.IssueFilter
		if mask&1 != 0 {
			f.Status = &status
		}
		if mask&2 != 0 {
			f.Category = "roads"
		}
		if mask&4 != 0 {
			f.Q = "x' OR 1=1 --"
		}
		if mask&8 != 0 {
			f.CreatedFrom = &now
		}
		if mask&16 != 0 {
			f.CreatedBefore = &now
		}
		sqlStr, args := buildWhere(f, pred)
		assert.True(t, strings.HasPrefix(sqlStr, clause), sqlStr)
		assert.Equal(t, "u9", args[0])
		assert.NotContains(t, sqlStr, "OR 1=1")
	}
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "i.created_at DESC, i.id DESC", orderBy(model.OrderNewest))
	assert.Equal(t, "i.created_at ASC, i.id ASC", orderBy(model.OrderOldest))
	assert.Equal(t, "LOWER(i.category) ASC, i.created_at DESC, i.id DESC", orderBy(model.OrderCategory))
	assert.Contains(t, orderBy(model.OrderStatus), "WHEN 'open' THEN 0 WHEN 'in_progress' THEN 1 WHEN 'resolved' THEN 2")
	assert.Equal(t, orderBy(model.OrderNewest), orderBy(model.Order("bogus")))
}

func TestIssuePostgres_Export(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)
	ctx := context.Background()

	t.Run("streams every row", func(t *testing.T) {
		rows := sqlmock.NewRows(issueCols)
		issueRow(rows, "a", time.Now())
		issueRow(rows, "b", time.Now())
		mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY i.created_at DESC")).WillReturnRows(rows)

		var ids []string
		err := repo.Export(ctx, model.IssueQuery{}, scope.Predicate{Kind: scope.All}, func(is *model.Issue) error {
			ids = append(ids, is.ID)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
	})

	t.Run("stops on callback error", func(t *testing.T) {
		rows := sqlmock.NewRows(issueCols)
		issueRow(rows, "a", time.Now())
		issueRow(rows, "b", time.Now())
		mock.ExpectQuery("ORDER BY").WillReturnRows(rows)

		calls := 0
		err := repo.Export(ctx, model.IssueQuery{}, scope.Predicate{Kind: scope.All}, func(*model.Issue) error {
			calls++
			return errors.New("client gone")
		})
		assert.EqualError(t, err, "client gone")
		assert.Equal(t, 1, calls)
	})
}

func TestIssuePostgres_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)
	ctx := context.Background()

	t.Run("single statement with changed columns only", func(t *testing.T) {
		resolved := model.StatusResolved
		patch := repository.IssuePatch{
			Status:     &resolved,
			AssignedTo: &sql.NullString{},
			PhotoURL:   sp("/uploads/photo_2_b.png"),
			ThumbURL:   sp("/uploads/thumbs/photo_2_b.png.jpg"),
		}
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE issues SET status = $1, assigned_to = $2, photo_url = $3, thumb_url = $4") +
			`\s+` + regexp.QuoteMeta("WHERE id = $5")).
			WithArgs("resolved", nil, "/uploads/photo_2_b.png", "/uploads/thumbs/photo_2_b.png.jpg", "issue-1").
			WillReturnRows(issueRow(sqlmock.NewRows(issueCols), "issue-1", time.Now()))

		is, err := repo.Update(ctx, "issue-1", patch)
		require.NoError(t, err)
		assert.Equal(t, "issue-1", is.ID)
	})

	t.Run("missing row", func(t *testing.T) {
		desc := "x"
		mock.ExpectQuery("UPDATE issues SET description").
			WithArgs("x", "missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(ctx, "missing", repository.IssuePatch{Description: &desc})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("empty patch reads the row", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1")).
			WithArgs("issue-1").
			WillReturnRows(issueRow(sqlmock.NewRows(issueCols), "issue-1", time.Now()))

		_, err := repo.Update(ctx, "issue-1", repository.IssuePatch{})
		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssuePostgres_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM issues WHERE id = $1")).
		WithArgs("issue-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "issue-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM issues WHERE id = $1")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "gone"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssuePostgres_Categories(t *testing.T) {
	db, mock := newMock(t)
	repo := NewIssuePostgres(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT i.category FROM issues i WHERE 1=1 AND (i.created_by = $1 OR i.assigned_to = $1) ORDER BY i.category")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("baches").AddRow("roads"))

	cats, err := repo.Categories(context.Background(), scope.For(model.Actor{ID: "u1"}))

	require.NoError(t, err)
	assert.Equal(t, []string{"baches", "roads"}, cats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
