package email

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"campusboard/internal/config"
	"campusboard/internal/lifecycle"
	"campusboard/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #7c3aed; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { padding: 15px; text-align: center; font-size: 12px; color: #6b7280; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
    </style>
</head>
<body>
    <div class="header"><h1>%s</h1></div>
    <div class="content">%s</div>
    <div class="footer"><p>Sent by <a href="%s">%s</a></p></div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, t.cfg.BaseURL, html.EscapeString(t.cfg.SiteTitle))
}

func (t *Templates) itemURL(ev lifecycle.Event) string {
	return fmt.Sprintf("%s/content/%s/%s", t.cfg.BaseURL, ev.ContentType, ev.ItemID)
}

func (t *Templates) footer() string {
	return fmt.Sprintf("\n--\n%s\n%s", t.cfg.SiteTitle, t.cfg.BaseURL)
}

// SubmissionPending is sent to moderators when an item enters the queue.
func (t *Templates) SubmissionPending(ev lifecycle.Event, author *models.Account) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] New %s pending review: %s", t.cfg.SiteTitle, ev.ContentType, ev.Summary)
	authorName := "unknown author"
	if author != nil {
		authorName = author.DisplayName
	}

	content := fmt.Sprintf(`
        <p>A %s has been submitted and needs review.</p>
        <div class="info-box">
            <p><span class="label">Title:</span> %s</p>
            <p><span class="label">Author:</span> %s</p>
        </div>
        <p><a href="%s/moderation/queue">Open the moderation queue</a></p>`,
		ev.ContentType,
		html.EscapeString(ev.Summary),
		html.EscapeString(authorName),
		t.cfg.BaseURL,
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("New %s pending review\n\nTitle: %s\nAuthor: %s\n\nReview at: %s/moderation/queue\n%s",
		ev.ContentType, ev.Summary, authorName, t.cfg.BaseURL, t.footer())
	return
}

// SubmissionApproved is sent to the author when their item is published.
func (t *Templates) SubmissionApproved(ev lifecycle.Event) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Your %s '%s' is published", t.cfg.SiteTitle, ev.ContentType, ev.Summary)

	content := fmt.Sprintf(`
        <p>Your %s was approved and is now visible to everyone.</p>
        <div class="info-box">
            <p><span class="label">Title:</span> %s</p>
        </div>
        <p><a href="%s">View it</a></p>`,
		ev.ContentType,
		html.EscapeString(ev.Summary),
		t.itemURL(ev),
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("Your %s was approved\n\nTitle: %s\nView: %s\n%s",
		ev.ContentType, ev.Summary, t.itemURL(ev), t.footer())
	return
}

// SubmissionRejected is sent to the author with the reviewer's note.
func (t *Templates) SubmissionRejected(ev lifecycle.Event) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Your %s '%s' needs changes", t.cfg.SiteTitle, ev.ContentType, ev.Summary)

	note := ""
	if ev.Note != nil {
		note = *ev.Note
	}
	noteHTML, noteText := "", ""
	if note != "" {
		noteHTML = fmt.Sprintf(`<p><span class="label">Reviewer note:</span> %s</p>`, html.EscapeString(note))
		noteText = "\nReviewer note: " + note
	}

	content := fmt.Sprintf(`
        <p>Your %s was not approved.</p>
        <div class="info-box">
            <p><span class="label">Title:</span> %s</p>
            %s
        </div>
        <p>You can move it back to draft, make changes and submit it again.</p>`,
		ev.ContentType,
		html.EscapeString(ev.Summary),
		noteHTML,
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("Your %s was not approved\n\nTitle: %s%s\n\nYou can move it back to draft, make changes and submit it again: %s\n%s",
		ev.ContentType, ev.Summary, noteText, t.itemURL(ev), t.footer())
	return
}

// PendingDigest summarizes items that have waited longer than minAge.
func (t *Templates) PendingDigest(counts map[models.ContentType]int, minAge time.Duration) (subject, htmlBody, textBody string) {
	total := 0
	types := make([]string, 0, len(counts))
	for ct, n := range counts {
		total += n
		types = append(types, string(ct))
	}
	sort.Strings(types)

	subject = fmt.Sprintf("[%s] %d item(s) waiting for review", t.cfg.SiteTitle, total)

	var rowsHTML, rowsText strings.Builder
	for _, ct := range types {
		n := counts[models.ContentType(ct)]
		fmt.Fprintf(&rowsHTML, `<p><span class="label">%s:</span> %d</p>`, html.EscapeString(ct), n)
		fmt.Fprintf(&rowsText, "%s: %d\n", ct, n)
	}

	content := fmt.Sprintf(`
        <p>These submissions have been pending for more than %s.</p>
        <div class="info-box">%s</div>
        <p><a href="%s/moderation/queue">Open the moderation queue</a></p>`,
		minAge,
		rowsHTML.String(),
		t.cfg.BaseURL,
	)
	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf("Pending for more than %s:\n\n%s\nReview at: %s/moderation/queue\n%s",
		minAge, rowsText.String(), t.cfg.BaseURL, t.footer())
	return
}
