// Package seed fills a development database with sample accounts and
// content in every lifecycle state.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/google/uuid"

	"campusboard/internal/gate"
	"campusboard/internal/lifecycle"
	"campusboard/internal/logging"
	"campusboard/internal/models"
	"campusboard/internal/oops"
)

type AccountStore interface {
	UpsertAccount(ctx context.Context, account *models.Account) error
	UpdateAccountRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Account, error)
}

type TopicStore interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
}

type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
}

// Seeder writes sample data through the lifecycle engines so that every
// item has a consistent header and audit trail.
type Seeder struct {
	Accounts    AccountStore
	Topics      TopicStore
	Events      EventStore
	News        *lifecycle.Engine[*models.News]
	Sharespeare *lifecycle.Engine[*models.SharespearePost]
	Comments    *lifecycle.Engine[*models.Comment]

	Categories []string
	Kinds      []string
	Members    int
	PerMember  int
}

// Summary counts what a run created.
type Summary struct {
	Accounts    int
	News        int
	Sharespeare int
	Topics      int
	Comments    int
	Events      int
}

// The state an item is left in after seeding.
var finishes = []models.Status{
	models.StatusDraft,
	models.StatusPending,
	models.StatusPublished,
	models.StatusRejected,
}

func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	admin, err := s.account(ctx, "seed-admin", "Ada Admin", models.RoleAdmin)
	if err != nil {
		return sum, err
	}
	mod, err := s.account(ctx, "seed-mod", "Morgan Moderator", models.RoleMod)
	if err != nil {
		return sum, err
	}
	sum.Accounts += 2

	members := make([]*models.Account, 0, s.Members)
	for i := range s.Members {
		m, err := s.account(ctx, fmt.Sprintf("seed-member-%d", i+1), fmt.Sprintf("Student %d", i+1), models.RoleMember)
		if err != nil {
			return sum, err
		}
		members = append(members, m)
	}
	sum.Accounts += len(members)

	for _, m := range members {
		for i := range s.PerMember {
			finish := finishes[i%len(finishes)]

			n, err := s.News.Create(ctx, m, &models.News{
				Title:    title(),
				Body:     body(),
				Category: s.Categories[rand.IntN(len(s.Categories))],
			})
			if err != nil {
				return sum, oops.New(err, "failed to seed news")
			}
			if err := walk(ctx, s.News, m, mod, n.ID, finish); err != nil {
				return sum, err
			}
			sum.News++

			p, err := s.Sharespeare.Create(ctx, m, &models.SharespearePost{
				Title: title(),
				Body:  body(),
				Kind:  s.Kinds[rand.IntN(len(s.Kinds))],
			})
			if err != nil {
				return sum, oops.New(err, "failed to seed sharespeare post")
			}
			if err := walk(ctx, s.Sharespeare, m, mod, p.ID, finish); err != nil {
				return sum, err
			}
			sum.Sharespeare++
		}
	}

	topic := &models.Topic{Title: title(), Body: lorem.Paragraph(1, 2), AuthorID: mod.ID}
	if err := s.Topics.CreateTopic(ctx, topic); err != nil {
		return sum, oops.New(err, "failed to seed topic")
	}
	sum.Topics++

	for i, m := range members {
		c, err := s.Comments.Create(ctx, m, &models.Comment{TopicID: topic.ID, Body: lorem.Sentence(4, 16)})
		if err != nil {
			return sum, oops.New(err, "failed to seed comment")
		}
		if i%2 == 0 {
			if _, err := s.Comments.Transition(ctx, mod, c.ID, gate.Approve, lifecycle.Payload{}); err != nil {
				return sum, oops.New(err, "failed to approve comment")
			}
		}
		sum.Comments++
	}

	starts := time.Now().UTC().Truncate(time.Hour).Add(72 * time.Hour)
	ends := starts.Add(2 * time.Hour)
	event := &models.Event{
		Title:       title(),
		Description: lorem.Paragraph(1, 1),
		Location:    "Main hall",
		StartsAt:    starts,
		EndsAt:      &ends,
		CreatedBy:   admin.ID,
	}
	if err := s.Events.CreateEvent(ctx, event); err != nil {
		return sum, oops.New(err, "failed to seed event")
	}
	sum.Events++

	logging.Info().
		Int("accounts", sum.Accounts).
		Int("news", sum.News).
		Int("sharespeare", sum.Sharespeare).
		Int("comments", sum.Comments).
		Msg("seed complete")
	return sum, nil
}

func (s *Seeder) account(ctx context.Context, subject, name string, role models.Role) (*models.Account, error) {
	a := &models.Account{
		Subject:     subject,
		Email:       subject + "@example.com",
		DisplayName: name,
	}
	if err := s.Accounts.UpsertAccount(ctx, a); err != nil {
		return nil, oops.New(err, "failed to seed account %s", subject)
	}
	if a.Role == role {
		return a, nil
	}
	updated, err := s.Accounts.UpdateAccountRole(ctx, a.ID, role)
	if err != nil {
		return nil, oops.New(err, "failed to set role for %s", subject)
	}
	return updated, nil
}

// walk moves a fresh draft to finish.
func walk[T lifecycle.Subject](ctx context.Context, e *lifecycle.Engine[T], author, mod *models.Account, id uuid.UUID, finish models.Status) error {
	if finish == models.StatusDraft {
		return nil
	}
	if _, err := e.Transition(ctx, author, id, gate.Submit, lifecycle.Payload{}); err != nil {
		return oops.New(err, "failed to submit %s", id)
	}

	var err error
	switch finish {
	case models.StatusPublished:
		_, err = e.Transition(ctx, mod, id, gate.Approve, lifecycle.Payload{})
	case models.StatusRejected:
		_, err = e.Transition(ctx, mod, id, gate.Reject, lifecycle.Payload{Note: lorem.Sentence(4, 10)})
	}
	if err != nil {
		return oops.New(err, "failed to review %s", id)
	}
	return nil
}

func title() string {
	return strings.TrimSuffix(lorem.Sentence(3, 7), ".")
}

func body() string {
	paragraphs := make([]string, 1+rand.IntN(3))
	for i := range paragraphs {
		paragraphs[i] = lorem.Paragraph(1, 3)
	}
	return strings.Join(paragraphs, "\n\n")
}
