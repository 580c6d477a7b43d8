package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"issueapi/internal/metrics"
	"issueapi/internal/model"
	"issueapi/internal/repository/mocks"
)

func sp(s string) *string { return &s }

func TestLog_Record(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mRepo := new(mocks.MockAuditRepository)
	mRepo.On("Append", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), mock.MatchedBy(func(e *model.AuditLogEntry) bool {
		return e.IssueID == "i1" && e.ActorID != nil && *e.ActorID == "u1" &&
			e.Action == model.ActionStatusChange && *e.OldValue == "open" && *e.NewValue == "resolved"
	})).Return(nil).Once()

	l := New(mRepo, nil, nil)
	l.Record(ctx, "i1", "u1", Change{Action: model.ActionStatusChange, Old: sp("open"), New: sp("resolved")})

	mRepo.AssertExpectations(t)
}

func TestLog_RecordFailureIsSwallowed(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	repo := &mocks.MemAuditRepository{AppendErr: errors.New("db down")}
	l := New(repo, nil, m)

	assert.NotPanics(t, func() {
		l.RecordAll(context.Background(), "i1", "", []Change{
			{Action: model.ActionCategoryChange, Old: sp("a"), New: sp("b")},
			{Action: model.ActionMapChange},
		})
	})
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuditFailures))
}

func TestLog_History(t *testing.T) {
	repo := &mocks.MemAuditRepository{}
	l := New(repo, nil, nil)
	ctx := context.Background()

	l.Record(ctx, "i1", "u1", Change{Action: model.ActionCreate, New: sp("Pothole")})
	l.Record(ctx, "i2", "u1", Change{Action: model.ActionCreate, New: sp("Other")})
	l.Record(ctx, "i1", "", Change{Action: model.ActionStatusChange, Old: sp("open"), New: sp("resolved")})

	h, err := l.History(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, model.ActionStatusChange, h[0].Action)
	assert.Nil(t, h[0].ActorID)
	assert.Equal(t, model.ActionCreate, h[1].Action)
}
