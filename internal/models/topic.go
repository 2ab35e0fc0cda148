package models

import (
	"time"

	"github.com/google/uuid"
)

type TopicStatus string

const (
	TopicOpen   TopicStatus = "OPEN"
	TopicLocked TopicStatus = "LOCKED"
)

// Topic is a discussion thread opened by a moderator.
type Topic struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	AuthorID  uuid.UUID   `json:"author_id"`
	Status    TopicStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Comment is a reply on a topic. Comments start PENDING and need approval.
type Comment struct {
	Header
	TopicID uuid.UUID `json:"topic_id"`
	Body    string    `json:"body"`
}

// Summary returns the first line of the comment, trimmed to 80 runes.
func (c *Comment) Summary() string {
	runes := []rune(c.Body)
	for i, r := range runes {
		if r == '\n' {
			runes = runes[:i]
			break
		}
	}
	if len(runes) > 80 {
		return string(runes[:77]) + "..."
	}
	return string(runes)
}

func (c *Comment) SearchText() string {
	return c.Body
}

func (c *Comment) Clone() *Comment {
	cp := *c
	return &cp
}
