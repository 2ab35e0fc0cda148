package gate

import (
	"fmt"
	"testing"

	"campusboard/internal/apperr"
	"campusboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var allStatuses = []models.Status{
	models.StatusDraft,
	models.StatusPending,
	models.StatusPublished,
	models.StatusRejected,
}

func account(role models.Role) *models.Account {
	return &models.Account{ID: uuid.New(), Role: role}
}

// expectedSubmission restates the moderation table independently of the
// rule map so the two can be checked against each other.
func expectedSubmission(role models.Role, isAuthor bool, action Action, status models.Status) apperr.Code {
	moderator := role.AtLeast(models.RoleMod)
	ownerAction := func(allowed ...models.Status) apperr.Code {
		if !isAuthor {
			return apperr.NotOwner
		}
		for _, s := range allowed {
			if s == status {
				return ""
			}
		}
		return apperr.InvalidState
	}

	switch action {
	case CreateDraft:
		return ""
	case EditDraft:
		return ownerAction(models.StatusDraft)
	case Delete:
		return ownerAction(models.StatusDraft, models.StatusPending)
	case Submit:
		return ownerAction(models.StatusDraft)
	case Rework:
		return ownerAction(models.StatusRejected)
	case Approve, Reject:
		if !moderator {
			return apperr.InsufficientRole
		}
		if status != models.StatusPending {
			return apperr.InvalidState
		}
		return ""
	}
	return apperr.InvalidState
}

func TestSubmissionPolicy_TruthTable(t *testing.T) {
	policy := SubmissionPolicy(false)

	for _, role := range models.Roles {
		for _, isAuthor := range []bool{true, false} {
			for _, action := range Actions {
				for _, status := range allStatuses {
					name := fmt.Sprintf("%s/author=%v/%s/%s", role, isAuthor, action, status)
					t.Run(name, func(t *testing.T) {
						caller := account(role)
						target := Target{AuthorID: uuid.New(), Status: status}
						if isAuthor {
							target.AuthorID = caller.ID
						}

						got := policy.Authorize(caller, action, target)
						want := expectedSubmission(role, isAuthor, action, status)

						if want == "" {
							assert.True(t, got.Allowed, "expected allow, got %s", got.Reason)
							assert.NoError(t, got.Err())
						} else {
							assert.False(t, got.Allowed)
							assert.Equal(t, want, got.Reason)
							assert.Equal(t, want, apperr.CodeOf(got.Err()))
						}
					})
				}
			}
		}
	}
}

func TestAuthorize_UnauthenticatedFirst(t *testing.T) {
	for _, action := range Actions {
		d := SubmissionPolicy(false).Authorize(nil, action, Target{Status: models.StatusPending})
		assert.Equal(t, apperr.Unauthenticated, d.Reason, "action %s", action)
	}
}

func TestAuthorize_RoleBeforeState(t *testing.T) {
	member := account(models.RoleMember)
	d := SubmissionPolicy(false).Authorize(member, Approve, Target{AuthorID: member.ID, Status: models.StatusDraft})
	assert.Equal(t, apperr.InsufficientRole, d.Reason)
}

func TestAuthorize_OwnershipBeforeState(t *testing.T) {
	mod := account(models.RoleMod)
	d := SubmissionPolicy(false).Authorize(mod, Submit, Target{AuthorID: uuid.New(), Status: models.StatusPublished})
	assert.Equal(t, apperr.NotOwner, d.Reason)
}

func TestSubmissionPolicy_EditPublished(t *testing.T) {
	author := account(models.RoleMember)
	target := Target{AuthorID: author.ID, Status: models.StatusPublished}

	assert.Equal(t, apperr.InvalidState, SubmissionPolicy(false).Authorize(author, EditDraft, target).Reason)
	assert.True(t, SubmissionPolicy(true).Authorize(author, EditDraft, target).Allowed)

	target.Status = models.StatusPending
	assert.False(t, SubmissionPolicy(true).Authorize(author, EditDraft, target).Allowed)
}

func TestCommentPolicy(t *testing.T) {
	policy := CommentPolicy()
	author := account(models.RoleMember)
	mod := account(models.RoleMod)
	pending := Target{AuthorID: author.ID, Status: models.StatusPending}
	approved := Target{AuthorID: author.ID, Status: models.StatusApproved}

	tests := []struct {
		name   string
		caller *models.Account
		action Action
		target Target
		want   apperr.Code
	}{
		{"member comments", author, CreateDraft, Target{}, ""},
		{"author deletes pending", author, Delete, pending, ""},
		{"author cannot delete approved", author, Delete, approved, apperr.InvalidState},
		{"mod deletes someone else's", mod, Delete, pending, apperr.NotOwner},
		{"mod approves", mod, Approve, pending, ""},
		{"mod rejects", mod, Reject, pending, ""},
		{"member cannot approve", author, Approve, pending, apperr.InsufficientRole},
		{"approve twice", mod, Approve, approved, apperr.InvalidState},
		{"no edit rule", author, EditDraft, pending, apperr.InvalidState},
		{"no submit rule", author, Submit, pending, apperr.InvalidState},
		{"no rework rule", author, Rework, pending, apperr.InvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.Authorize(tt.caller, tt.action, tt.target)
			if tt.want == "" {
				assert.True(t, d.Allowed, "denied with %s", d.Reason)
				return
			}
			assert.Equal(t, tt.want, d.Reason)
		})
	}
}

func TestRequire(t *testing.T) {
	assert.Equal(t, apperr.Unauthenticated, Require(nil, models.RoleMember).Reason)
	assert.Equal(t, apperr.InsufficientRole, Require(account(models.RoleMember), models.RoleMod).Reason)
	assert.True(t, Require(account(models.RoleMod), models.RoleMod).Allowed)
	assert.Equal(t, apperr.InsufficientRole, Require(account(models.RoleMod), models.RoleAdmin).Reason)
	assert.True(t, Require(account(models.RoleAdmin), models.RoleAdmin).Allowed)
}

func TestCanView(t *testing.T) {
	author := account(models.RoleMember)
	other := account(models.RoleMember)
	mod := account(models.RoleMod)

	for _, status := range allStatuses {
		target := Target{AuthorID: author.ID, Status: status}
		published := status == models.StatusPublished

		assert.False(t, CanView(nil, target, models.StatusPublished), "nil caller, %s", status)
		assert.True(t, CanView(author, target, models.StatusPublished), "author, %s", status)
		assert.True(t, CanView(mod, target, models.StatusPublished), "mod, %s", status)
		assert.Equal(t, published, CanView(other, target, models.StatusPublished), "other member, %s", status)
	}
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction("approve")
	assert.True(t, ok)
	assert.Equal(t, Approve, a)

	_, ok = ParseAction("publish")
	assert.False(t, ok)
}
