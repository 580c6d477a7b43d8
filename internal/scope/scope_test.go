package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"issueapi/internal/model"
)

func sp(s string) *string { return &s }

func TestFor(t *testing.T) {
	assert.Equal(t, Predicate{Kind: None}, For(model.Actor{}))
	assert.Equal(t, Predicate{Kind: None}, For(model.Actor{Role: model.RoleAdmin}))
	assert.Equal(t, Predicate{Kind: All, UserID: "a1", Privileged: true}, For(model.Actor{ID: "a1", Role: model.RoleAdmin}))
	assert.Equal(t, Predicate{Kind: OwnOrAssigned, UserID: "u1"}, For(model.Actor{ID: "u1", Role: model.RoleUser}))
	assert.True(t, For(model.Actor{ID: "u1"}).Restricted())
	assert.False(t, For(model.Actor{ID: "a1", Role: model.RoleAdmin}).Restricted())
}

func TestPredicate_RowChecks(t *testing.T) {
	owned := &model.Issue{ID: "1", CreatedBy: sp("u1")}
	assigned := &model.Issue{ID: "2", CreatedBy: sp("u2"), AssignedTo: sp("u1")}
	foreign := &model.Issue{ID: "3", CreatedBy: sp("u2")}
	anonymous := &model.Issue{ID: "4"}

	tests := []struct {
		name                         string
		pred                         Predicate
		issue                        *model.Issue
		canRead, canWrite, canDelete bool
	}{
		{"owner", For(model.Actor{ID: "u1"}), owned, true, true, true},
		{"assignee", For(model.Actor{ID: "u1"}), assigned, true, true, false},
		{"stranger", For(model.Actor{ID: "u1"}), foreign, false, false, false},
		{"unowned row", For(model.Actor{ID: "u1"}), anonymous, false, false, false},
		{"admin", For(model.Actor{ID: "a", Role: model.RoleAdmin}), foreign, true, true, true},
		{"no identity", For(model.Actor{}), anonymous, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canRead, tt.pred.CanRead(tt.issue))
			assert.Equal(t, tt.canWrite, tt.pred.CanWrite(tt.issue))
			assert.Equal(t, tt.canDelete, tt.pred.CanDelete(tt.issue))
		})
	}
}

func TestPredicate_CanAssign(t *testing.T) {
	assert.True(t, For(model.Actor{ID: "a", Role: model.RoleAdmin}).CanAssign())
	assert.False(t, For(model.Actor{ID: "u"}).CanAssign())
}
