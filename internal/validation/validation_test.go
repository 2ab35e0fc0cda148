package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusboard/internal/apperr"
	"campusboard/internal/config"
	"campusboard/internal/models"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"valid https", "https://example.com", true, ""},
		{"valid http", "http://example.com", true, ""},
		{"valid with path", "https://example.com/path/to/page", true, ""},
		{"valid with query", "https://example.com?foo=bar", true, ""},
		{"valid with port", "https://example.com:8080", true, ""},
		{"empty string", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"data scheme", "data:text/html,<script>alert(1)</script>", false, "URL must use http:// or https:// scheme"},
		{"vbscript scheme", "vbscript:msgbox", false, "URL must use http:// or https:// scheme"},
		{"file scheme", "file:///etc/passwd", false, "URL must use http:// or https:// scheme"},
		{"ftp scheme", "ftp://example.com", false, "URL must use http:// or https:// scheme"},
		{"no scheme", "example.com", false, "URL must use http:// or https:// scheme"},
		{"relative url", "/path/to/page", false, "URL must use http:// or https:// scheme"},
		{"uppercase scheme", "HTTPS://example.com", true, ""},
		{"mixed case scheme", "HtTpS://example.com", true, ""},
		{"scheme only", "https://", false, "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			if valid != tt.valid {
				t.Errorf("ValidateURL(%q) valid = %v, want %v", tt.url, valid, tt.valid)
			}
			if !valid && msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}

type stubMedia struct {
	checked []string
	reject  string
}

func (s *stubMedia) CheckMedia(_ context.Context, ref string) error {
	s.checked = append(s.checked, ref)
	if ref == s.reject {
		return apperr.Validation("media object not found")
	}
	return nil
}

func TestNews(t *testing.T) {
	rules := NewRules(config.DefaultPolicy(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		news    models.News
		wantErr string
	}{
		{"valid", models.News{Title: "Science fair", Body: "Friday", Category: "CAMPUS"}, ""},
		{"lowercase category", models.News{Title: "Derby", Body: "Saturday", Category: " global "}, ""},
		{"missing title", models.News{Title: "   ", Body: "x", Category: "CAMPUS"}, "title is required"},
		{"missing body", models.News{Title: "t", Body: "\n", Category: "CAMPUS"}, "body is required"},
		{"unknown category", models.News{Title: "t", Body: "b", Category: "SPORTS"}, "category must be one of CAMPUS, GLOBAL"},
		{"long title", models.News{Title: strings.Repeat("é", 201), Body: "b", Category: "CAMPUS"}, "title must be at most 200 characters"},
		{"bad image", models.News{Title: "t", Body: "b", Category: "CAMPUS", ImageURL: "javascript:alert(1)"}, "URL must use http:// or https:// scheme"},
		{"good image", models.News{Title: "t", Body: "b", Category: "CAMPUS", ImageURL: "https://cdn.example.com/a.png"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.news
			err := rules.News(ctx, &n)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.ValidationError, apperr.CodeOf(err))
			assert.Equal(t, tt.wantErr, apperr.Message(err))
		})
	}
}

func TestNews_Normalizes(t *testing.T) {
	n := &models.News{Title: "  Derby  ", Body: "b", Category: "global"}
	require.NoError(t, NewRules(nil, nil).News(context.Background(), n))
	assert.Equal(t, "Derby", n.Title)
	assert.Equal(t, "GLOBAL", n.Category)
}

func TestMissingCategoryAndKindUseFirstConfigured(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.NewsCategories = []string{"GLOBAL", "CAMPUS"}
	rules := NewRules(policy, nil)
	ctx := context.Background()

	n := &models.News{Title: "Derby", Body: "b", Category: "  "}
	require.NoError(t, rules.News(ctx, n))
	assert.Equal(t, "GLOBAL", n.Category)

	post := &models.SharespearePost{Title: "Ode", Body: "verse"}
	require.NoError(t, rules.Sharespeare(ctx, post))
	assert.Equal(t, "POEM", post.Kind)
}

func TestSharespeare(t *testing.T) {
	media := &stubMedia{reject: "https://cdn.example.com/missing.png"}
	rules := NewRules(config.DefaultPolicy(), media)
	ctx := context.Background()

	post := &models.SharespearePost{Title: "Ode", Body: "verse", Kind: "poem", MediaURLs: []string{" https://cdn.example.com/a.png "}}
	require.NoError(t, rules.Sharespeare(ctx, post))
	assert.Equal(t, "POEM", post.Kind)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, media.checked)

	post = &models.SharespearePost{Title: "Ode", Body: "verse", Kind: "LIMERICK"}
	assert.Equal(t, apperr.ValidationError, apperr.CodeOf(rules.Sharespeare(ctx, post)))

	post = &models.SharespearePost{Title: "Ode", Body: "verse", Kind: "ART", MediaURLs: []string{"https://cdn.example.com/missing.png"}}
	err := rules.Sharespeare(ctx, post)
	assert.Equal(t, "media object not found", apperr.Message(err))

	urls := make([]string, 6)
	for i := range urls {
		urls[i] = "https://cdn.example.com/x.png"
	}
	post = &models.SharespearePost{Title: "Ode", Body: "verse", Kind: "ART", MediaURLs: urls}
	err = rules.Sharespeare(ctx, post)
	assert.Equal(t, "at most 5 media references are allowed", apperr.Message(err))
}

func TestSharespeare_SkipsCheckerForMalformedURL(t *testing.T) {
	media := &stubMedia{}
	rules := NewRules(nil, media)
	post := &models.SharespearePost{Title: "Ode", Body: "verse", Kind: "ART", MediaURLs: []string{"ftp://files/x"}}

	err := rules.Sharespeare(context.Background(), post)
	assert.Equal(t, apperr.ValidationError, apperr.CodeOf(err))
	assert.Empty(t, media.checked)
}

func TestComment(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.Limits.CommentMax = 10
	rules := NewRules(policy, nil)
	ctx := context.Background()

	c := &models.Comment{Body: "  nice  "}
	require.NoError(t, rules.Comment(ctx, c))
	assert.Equal(t, "nice", c.Body)

	assert.Error(t, rules.Comment(ctx, &models.Comment{Body: " \t "}))
	assert.Error(t, rules.Comment(ctx, &models.Comment{Body: strings.Repeat("a", 11)}))
}

func TestTopic(t *testing.T) {
	rules := NewRules(nil, nil)
	assert.NoError(t, rules.Topic(&models.Topic{Title: "Lunch menu", Body: "Thoughts?"}))
	assert.Error(t, rules.Topic(&models.Topic{Title: "", Body: "Thoughts?"}))
	assert.Error(t, rules.Topic(&models.Topic{Title: "Lunch", Body: ""}))
}

func TestEvent(t *testing.T) {
	rules := NewRules(nil, nil)
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	after := start.Add(time.Hour)

	assert.NoError(t, rules.Event(&models.Event{Title: "Assembly", StartsAt: start}))
	assert.NoError(t, rules.Event(&models.Event{Title: "Assembly", StartsAt: start, EndsAt: &after}))

	err := rules.Event(&models.Event{Title: "Assembly", StartsAt: start, EndsAt: &before})
	assert.Equal(t, "ends_at must not be before starts_at", apperr.Message(err))

	err = rules.Event(&models.Event{Title: "Assembly"})
	assert.Equal(t, "starts_at is required", apperr.Message(err))

	var appErr *apperr.Error
	assert.True(t, errors.As(err, &appErr))
}
