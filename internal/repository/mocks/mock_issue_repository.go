package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"issueapi/internal/model"
	"issueapi/internal/repository"
	"issueapi/internal/scope"
)

type MockIssueRepository struct {
	mock.Mock
}

func (m *MockIssueRepository) Create(ctx context.Context, is *model.Issue) (*model.Issue, error) {
	args := m.Called(ctx, is)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueRepository) FindByID(ctx context.Context, id string) (*model.Issue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueRepository) List(ctx context.Context, q model.IssueQuery, pred scope.Predicate) (*repository.PageResult[model.Issue], error) {
	args := m.Called(ctx, q, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Issue]), args.Error(1)
}

func (m *MockIssueRepository) Export(ctx context.Context, q model.IssueQuery, pred scope.Predicate, fn func(*model.Issue) error) error {
	args := m.Called(ctx, q, pred, fn)
	if rows, ok := args.Get(0).([]model.Issue); ok {
		for i := range rows {
			if err := fn(&rows[i]); err != nil {
				return err
			}
		}
		return args.Error(1)
	}
	return args.Error(0)
}

func (m *MockIssueRepository) Update(ctx context.Context, id string, patch repository.IssuePatch) (*model.Issue, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIssueRepository) Categories(ctx context.Context, pred scope.Predicate) ([]string, error) {
	args := m.Called(ctx, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, e *model.AuditLogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByIssue(ctx context.Context, issueID string) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}
