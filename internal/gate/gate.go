// Package gate decides whether a caller may perform a lifecycle action on
// a moderated item. Decisions are pure functions of the caller's role and
// id and the target's author and status; nothing here touches storage.
package gate

import (
	"slices"

	"campusboard/internal/apperr"
	"campusboard/internal/models"

	"github.com/google/uuid"
)

type Action string

const (
	CreateDraft Action = "create"
	EditDraft   Action = "edit"
	Delete      Action = "delete"
	Submit      Action = "submit"
	Approve     Action = "approve"
	Reject      Action = "reject"
	Rework      Action = "rework"
)

// Actions lists every lifecycle action.
var Actions = []Action{CreateDraft, EditDraft, Delete, Submit, Approve, Reject, Rework}

// ParseAction accepts the URL form of an action (e.g. "approve").
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	return a, slices.Contains(Actions, a)
}

// Target is the part of an item the gate looks at.
type Target struct {
	AuthorID uuid.UUID
	Status   models.Status
}

// TargetOf extracts the gate's view of an item header.
func TargetOf(h *models.Header) Target {
	return Target{AuthorID: h.AuthorID, Status: h.Status}
}

// Decision is Allowed, or denied for exactly one Reason.
type Decision struct {
	Allowed bool
	Reason  apperr.Code
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason apperr.Code) Decision {
	return Decision{Reason: reason}
}

// Err returns nil when allowed, otherwise the matching apperr sentinel.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case apperr.Unauthenticated:
		return apperr.ErrUnauthenticated
	case apperr.InsufficientRole:
		return apperr.ErrInsufficientRole
	case apperr.NotOwner:
		return apperr.ErrNotOwner
	default:
		return apperr.ErrInvalidState
	}
}

// Rule describes who may perform an action and from which states.
// An empty From means the action does not depend on a current state.
type Rule struct {
	MinRole   models.Role
	OwnerOnly bool
	From      []models.Status
}

// Policy is a rule table. Actions without a rule are never allowed.
type Policy struct {
	Name  string
	rules map[Action]Rule
}

func NewPolicy(name string, rules map[Action]Rule) Policy {
	return Policy{Name: name, rules: rules}
}

func (p Policy) Rule(action Action) (Rule, bool) {
	r, ok := p.rules[action]
	return r, ok
}

// Authorize checks caller presence, role tier, ownership and current state,
// in that order, and reports the first failure.
func (p Policy) Authorize(caller *models.Account, action Action, target Target) Decision {
	if caller == nil {
		return deny(apperr.Unauthenticated)
	}
	rule, ok := p.rules[action]
	if !ok {
		return deny(apperr.InvalidState)
	}
	if !caller.Role.AtLeast(rule.MinRole) {
		return deny(apperr.InsufficientRole)
	}
	if rule.OwnerOnly && caller.ID != target.AuthorID {
		return deny(apperr.NotOwner)
	}
	if len(rule.From) > 0 && !slices.Contains(rule.From, target.Status) {
		return deny(apperr.InvalidState)
	}
	return allow()
}

var ownerEditable = []models.Status{models.StatusDraft}

// SubmissionPolicy is the table for news and sharespeare posts. When
// editPublished is set, authors may also edit their PUBLISHED items.
func SubmissionPolicy(editPublished bool) Policy {
	editFrom := ownerEditable
	if editPublished {
		editFrom = []models.Status{models.StatusDraft, models.StatusPublished}
	}
	return NewPolicy("submission", map[Action]Rule{
		CreateDraft: {MinRole: models.RoleMember},
		EditDraft:   {MinRole: models.RoleMember, OwnerOnly: true, From: editFrom},
		Delete:      {MinRole: models.RoleMember, OwnerOnly: true, From: []models.Status{models.StatusDraft, models.StatusPending}},
		Submit:      {MinRole: models.RoleMember, OwnerOnly: true, From: []models.Status{models.StatusDraft}},
		Approve:     {MinRole: models.RoleMod, From: []models.Status{models.StatusPending}},
		Reject:      {MinRole: models.RoleMod, From: []models.Status{models.StatusPending}},
		Rework:      {MinRole: models.RoleMember, OwnerOnly: true, From: []models.Status{models.StatusRejected}},
	})
}

// CommentPolicy drops the draft actions: comments are born PENDING.
func CommentPolicy() Policy {
	return NewPolicy("comment", map[Action]Rule{
		CreateDraft: {MinRole: models.RoleMember},
		Delete:      {MinRole: models.RoleMember, OwnerOnly: true, From: []models.Status{models.StatusPending}},
		Approve:     {MinRole: models.RoleMod, From: []models.Status{models.StatusPending}},
		Reject:      {MinRole: models.RoleMod, From: []models.Status{models.StatusPending}},
	})
}

// Require checks a plain role requirement for resources outside the
// submission lifecycle (topics, events, accounts).
func Require(caller *models.Account, min models.Role) Decision {
	if caller == nil {
		return deny(apperr.Unauthenticated)
	}
	if !caller.Role.AtLeast(min) {
		return deny(apperr.InsufficientRole)
	}
	return allow()
}

// CanView reports whether caller may read an item in its current state.
// Items in the published state are visible to every signed-in account;
// anything else only to its author and moderators.
func CanView(caller *models.Account, target Target, published models.Status) bool {
	if caller == nil {
		return false
	}
	if target.Status == published {
		return true
	}
	return caller.ID == target.AuthorID || caller.IsModerator()
}
