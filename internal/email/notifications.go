package email

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campusboard/internal/config"
	"campusboard/internal/gate"
	"campusboard/internal/lifecycle"
	"campusboard/internal/logging"
	"campusboard/internal/models"
	"campusboard/internal/oops"
)

// Directory looks up who to notify.
type Directory interface {
	GetModeratorEmails(ctx context.Context) ([]string, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type sender interface {
	IsEnabled() bool
	SendAsync(to []string, subject, htmlBody, textBody string)
}

// Notifier sends email for lifecycle events. It is registered as an
// engine hook.
type Notifier struct {
	service   sender
	templates *Templates
	cfg       *config.Config
	dir       Directory
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, dir Directory) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		dir:       dir,
	}
}

// AfterTransition notifies moderators of new submissions and authors of
// review outcomes.
func (n *Notifier) AfterTransition(ctx context.Context, ev lifecycle.Event) error {
	if !n.service.IsEnabled() || !ev.StatusChanged() {
		return nil
	}

	switch ev.Action {
	case gate.Submit:
		if n.cfg.EmailNotifyModeratorsOnSubmit {
			return n.notifySubmitted(ctx, ev)
		}
	case gate.Approve, gate.Reject:
		if n.cfg.EmailNotifyAuthorOnReview {
			return n.notifyReviewed(ctx, ev)
		}
	}
	return nil
}

func (n *Notifier) notifySubmitted(ctx context.Context, ev lifecycle.Event) error {
	emails, err := n.dir.GetModeratorEmails(ctx)
	if err != nil {
		return oops.New(err, "failed to get moderator emails")
	}
	if len(emails) == 0 {
		logging.Debug().Msg("no moderator emails found for notification")
		return nil
	}

	author := ev.Actor
	if author == nil || author.ID != ev.AuthorID {
		author, err = n.dir.GetAccountByID(ctx, ev.AuthorID)
		if err != nil {
			return oops.New(err, "failed to get author")
		}
	}

	subject, htmlBody, textBody := n.templates.SubmissionPending(ev, author)
	n.service.SendAsync(emails, subject, htmlBody, textBody)
	return nil
}

func (n *Notifier) notifyReviewed(ctx context.Context, ev lifecycle.Event) error {
	author, err := n.dir.GetAccountByID(ctx, ev.AuthorID)
	if err != nil {
		return oops.New(err, "failed to get author")
	}
	if author.Email == "" {
		return nil
	}

	var subject, htmlBody, textBody string
	if ev.Action == gate.Approve {
		subject, htmlBody, textBody = n.templates.SubmissionApproved(ev)
	} else {
		subject, htmlBody, textBody = n.templates.SubmissionRejected(ev)
	}
	n.service.SendAsync([]string{author.Email}, subject, htmlBody, textBody)
	return nil
}

// NotifyPendingDigest mails moderators a count of stale pending items.
func (n *Notifier) NotifyPendingDigest(ctx context.Context, counts map[models.ContentType]int, minAge time.Duration) error {
	if !n.service.IsEnabled() {
		return nil
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}

	emails, err := n.dir.GetModeratorEmails(ctx)
	if err != nil {
		return oops.New(err, "failed to get moderator emails")
	}
	if len(emails) == 0 {
		return nil
	}

	subject, htmlBody, textBody := n.templates.PendingDigest(counts, minAge)
	n.service.SendAsync(emails, subject, htmlBody, textBody)
	return nil
}
