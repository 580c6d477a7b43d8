package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"issueapi/internal/model"
	"issueapi/internal/service"
	"issueapi/internal/validation"
)

type MockIssueService struct {
	mock.Mock
}

var _ service.IssueService = (*MockIssueService)(nil)

func (m *MockIssueService) Create(ctx context.Context, actor model.Actor, cmd validation.CreateIssueCommand) (*model.Issue, error) {
	args := m.Called(ctx, actor, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueService) Get(ctx context.Context, actor model.Actor, id string) (*model.Issue, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueService) List(ctx context.Context, actor model.Actor, q model.IssueQuery) (*service.IssueListResult, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssueListResult), args.Error(1)
}

// Export feeds every issue of Get(0), when it is a []model.Issue, to fn.
func (m *MockIssueService) Export(ctx context.Context, actor model.Actor, q model.IssueQuery, fn func(*model.Issue) error) error {
	args := m.Called(ctx, actor, q, fn)
	if items, ok := args.Get(0).([]model.Issue); ok {
		for i := range items {
			if err := fn(&items[i]); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (m *MockIssueService) Update(ctx context.Context, actor model.Actor, id string, cmd validation.UpdateIssueCommand) (*model.Issue, error) {
	args := m.Called(ctx, actor, id, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Issue), args.Error(1)
}

func (m *MockIssueService) Delete(ctx context.Context, actor model.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockIssueService) History(ctx context.Context, actor model.Actor, id string) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

func (m *MockIssueService) Categories(ctx context.Context, actor model.Actor) ([]string, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
