package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a moderated item.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusPublished Status = "PUBLISHED"
	StatusRejected  Status = "REJECTED"
	StatusApproved  Status = "APPROVED" // comments only

	// StatusDeleted only appears in the audit trail.
	StatusDeleted Status = "DELETED"
)

// ContentType names a moderated collection.
type ContentType string

const (
	ContentNews        ContentType = "news"
	ContentSharespeare ContentType = "sharespeare"
	ContentComment     ContentType = "comment"
)

// Header holds the lifecycle fields shared by every moderated item.
type Header struct {
	ID          uuid.UUID  `json:"id"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	PublishedAt *time.Time `json:"published_at"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewNote  *string    `json:"review_note"`
}

// Meta returns the receiver so embedding types satisfy lifecycle.Subject.
func (h *Header) Meta() *Header {
	return h
}

// News is a campus or global news article.
type News struct {
	Header
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
}

func (n *News) Summary() string {
	return n.Title
}

// SearchText is the text matched by a listing search: title and body.
func (n *News) SearchText() string {
	return n.Title + "\n" + n.Body
}

func (n *News) Clone() *News {
	c := *n
	return &c
}

// SharespearePost is a piece of creative work shared by a student.
type SharespearePost struct {
	Header
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Kind      string   `json:"kind"`
	MediaURLs []string `json:"media_urls"`
}

func (p *SharespearePost) Summary() string {
	return p.Title
}

func (p *SharespearePost) SearchText() string {
	return p.Title + "\n" + p.Body
}

func (p *SharespearePost) Clone() *SharespearePost {
	c := *p
	c.MediaURLs = append([]string(nil), p.MediaURLs...)
	return &c
}
