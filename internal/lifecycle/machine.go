package lifecycle

import (
	"fmt"
	"slices"

	"campusboard/internal/gate"
	"campusboard/internal/models"
)

// EditPublishedRule decides what an author edit of a published item does.
type EditPublishedRule string

const (
	EditPublishedDeny   EditPublishedRule = "deny"
	EditPublishedDemote EditPublishedRule = "demote"
)

func ParseEditPublishedRule(s string) (EditPublishedRule, error) {
	switch r := EditPublishedRule(s); r {
	case "":
		return EditPublishedDeny, nil
	case EditPublishedDeny, EditPublishedDemote:
		return r, nil
	}
	return "", fmt.Errorf("unknown edit-after-publish rule %q", s)
}

// Machine binds a gate policy to the states its actions lead to.
type Machine struct {
	Policy            gate.Policy
	Initial           models.Status
	Published         models.Status
	RequireRejectNote bool
}

// SubmissionMachine is DRAFT -> PENDING -> PUBLISHED | REJECTED with
// REJECTED -> DRAFT rework.
func SubmissionMachine(rule EditPublishedRule) Machine {
	return Machine{
		Policy:            gate.SubmissionPolicy(rule == EditPublishedDemote),
		Initial:           models.StatusDraft,
		Published:         models.StatusPublished,
		RequireRejectNote: true,
	}
}

// CommentMachine is PENDING -> APPROVED | REJECTED.
func CommentMachine() Machine {
	return Machine{
		Policy:    gate.CommentPolicy(),
		Initial:   models.StatusPending,
		Published: models.StatusApproved,
	}
}

// target returns the status a transition action moves an item to.
func (m Machine) target(action gate.Action) (models.Status, bool) {
	if _, ok := m.Policy.Rule(action); !ok {
		return "", false
	}
	switch action {
	case gate.Submit:
		return models.StatusPending, true
	case gate.Approve:
		return m.Published, true
	case gate.Reject:
		return models.StatusRejected, true
	case gate.Rework:
		return models.StatusDraft, true
	}
	return "", false
}

// HasStatus reports whether an item of this machine can ever be in status.
func (m Machine) HasStatus(status models.Status) bool {
	if status == m.Initial {
		return true
	}
	for _, action := range gate.Actions {
		if to, ok := m.target(action); ok && to == status {
			return true
		}
	}
	return false
}

// movedOn reports whether current is where some transition leaving one of
// action's source states would have put the item. Used to tell a lost race
// apart from a request that was never valid.
func (m Machine) movedOn(action gate.Action, current models.Status) bool {
	rule, ok := m.Policy.Rule(action)
	if !ok {
		return false
	}
	for _, other := range gate.Actions {
		to, ok := m.target(other)
		if !ok || to != current {
			continue
		}
		otherRule, _ := m.Policy.Rule(other)
		for _, from := range rule.From {
			if slices.Contains(otherRule.From, from) {
				return true
			}
		}
	}
	return false
}
