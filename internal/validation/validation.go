// Package validation checks content payloads against the configured policy.
package validation

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"campusboard/internal/apperr"
	"campusboard/internal/config"
	"campusboard/internal/models"
)

// MediaChecker verifies a media reference. Errors are reported to the
// client as validation failures.
type MediaChecker interface {
	CheckMedia(ctx context.Context, ref string) error
}

// Rules validates payloads. Validators trim whitespace and upper-case
// enumerated fields in place before checking them.
type Rules struct {
	policy *config.PolicyConfig
	media  MediaChecker
}

// NewRules builds the validators. media may be nil, in which case media
// references only need to be well-formed URLs.
func NewRules(policy *config.PolicyConfig, media MediaChecker) *Rules {
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &Rules{policy: policy, media: media}
}

// News validates a news article. An empty category defaults to the first
// configured one.
func (r *Rules) News(ctx context.Context, n *models.News) error {
	n.Title = strings.TrimSpace(n.Title)
	n.Category = strings.ToUpper(strings.TrimSpace(n.Category))
	n.ImageURL = strings.TrimSpace(n.ImageURL)

	if err := r.title(n.Title); err != nil {
		return err
	}
	if err := r.body(n.Body); err != nil {
		return err
	}
	if n.Category == "" {
		n.Category = r.policy.NewsCategories[0]
	}
	if !slices.Contains(r.policy.NewsCategories, n.Category) {
		return apperr.Validation(fmt.Sprintf("category must be one of %s", strings.Join(r.policy.NewsCategories, ", ")))
	}
	if n.ImageURL != "" {
		return r.mediaRef(ctx, n.ImageURL)
	}
	return nil
}

// Sharespeare validates a sharespeare post. An empty kind defaults to the
// first configured one.
func (r *Rules) Sharespeare(ctx context.Context, p *models.SharespearePost) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Kind = strings.ToUpper(strings.TrimSpace(p.Kind))

	if err := r.title(p.Title); err != nil {
		return err
	}
	if err := r.body(p.Body); err != nil {
		return err
	}
	if p.Kind == "" {
		p.Kind = r.policy.SharespeareKinds[0]
	}
	if !slices.Contains(r.policy.SharespeareKinds, p.Kind) {
		return apperr.Validation(fmt.Sprintf("kind must be one of %s", strings.Join(r.policy.SharespeareKinds, ", ")))
	}
	if len(p.MediaURLs) > r.policy.Limits.MaxMedia {
		return apperr.Validation(fmt.Sprintf("at most %d media references are allowed", r.policy.Limits.MaxMedia))
	}
	for i, ref := range p.MediaURLs {
		p.MediaURLs[i] = strings.TrimSpace(ref)
		if err := r.mediaRef(ctx, p.MediaURLs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Comment validates a comment body.
func (r *Rules) Comment(_ context.Context, c *models.Comment) error {
	c.Body = strings.TrimSpace(c.Body)
	if c.Body == "" {
		return apperr.Validation("comment must not be empty")
	}
	if utf8.RuneCountInString(c.Body) > r.policy.Limits.CommentMax {
		return apperr.Validation(fmt.Sprintf("comment must be at most %d characters", r.policy.Limits.CommentMax))
	}
	return nil
}

// Topic validates a new discussion topic.
func (r *Rules) Topic(t *models.Topic) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := r.title(t.Title); err != nil {
		return err
	}
	return r.body(t.Body)
}

// Event validates a calendar event.
func (r *Rules) Event(e *models.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	e.Location = strings.TrimSpace(e.Location)
	if err := r.title(e.Title); err != nil {
		return err
	}
	if e.StartsAt.IsZero() {
		return apperr.Validation("starts_at is required")
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return apperr.Validation("ends_at must not be before starts_at")
	}
	return nil
}

func (r *Rules) title(title string) error {
	if title == "" {
		return apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > r.policy.Limits.TitleMax {
		return apperr.Validation(fmt.Sprintf("title must be at most %d characters", r.policy.Limits.TitleMax))
	}
	return nil
}

func (r *Rules) body(body string) error {
	if strings.TrimSpace(body) == "" {
		return apperr.Validation("body is required")
	}
	if utf8.RuneCountInString(body) > r.policy.Limits.BodyMax {
		return apperr.Validation(fmt.Sprintf("body must be at most %d characters", r.policy.Limits.BodyMax))
	}
	return nil
}

func (r *Rules) mediaRef(ctx context.Context, ref string) error {
	if valid, msg := ValidateURL(ref); !valid {
		return apperr.Validation(msg)
	}
	if r.media == nil {
		return nil
	}
	if err := r.media.CheckMedia(ctx, ref); err != nil {
		return err
	}
	return nil
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
