package db

import (
	"campusboard/internal/models"
)

// News returns the repository for news articles.
func (d *DB) News() *SubmissionRepo[*models.News] {
	return &SubmissionRepo[*models.News]{db: d, t: table[*models.News]{
		name:    "news",
		payload: []string{"title", "body", "category", "image_url"},
		values: func(n *models.News) []any {
			return []any{n.Title, n.Body, n.Category, n.ImageURL}
		},
		targets: func(n *models.News) []any {
			return []any{&n.Title, &n.Body, &n.Category, &n.ImageURL}
		},
		newItem:  func() *models.News { return &models.News{} },
		category: "category",
		search:   []string{"title", "body"},
	}}
}

// Sharespeare returns the repository for sharespeare posts.
func (d *DB) Sharespeare() *SubmissionRepo[*models.SharespearePost] {
	return &SubmissionRepo[*models.SharespearePost]{db: d, t: table[*models.SharespearePost]{
		name:    "sharespeare",
		payload: []string{"title", "body", "kind", "media_urls"},
		values: func(p *models.SharespearePost) []any {
			media := p.MediaURLs
			if media == nil {
				media = []string{}
			}
			return []any{p.Title, p.Body, p.Kind, media}
		},
		targets: func(p *models.SharespearePost) []any {
			return []any{&p.Title, &p.Body, &p.Kind, &p.MediaURLs}
		},
		newItem:  func() *models.SharespearePost { return &models.SharespearePost{} },
		category: "kind",
		search:   []string{"title", "body"},
	}}
}

// Comments returns the repository for topic comments.
func (d *DB) Comments() *SubmissionRepo[*models.Comment] {
	return &SubmissionRepo[*models.Comment]{db: d, t: table[*models.Comment]{
		name:    "comments",
		payload: []string{"topic_id", "body"},
		values: func(c *models.Comment) []any {
			return []any{c.TopicID, c.Body}
		},
		targets: func(c *models.Comment) []any {
			return []any{&c.TopicID, &c.Body}
		},
		newItem: func() *models.Comment { return &models.Comment{} },
		parent:  "topic_id",
		search:  []string{"body"},
	}}
}

// contentTables maps each moderated content type to its table.
var contentTables = map[models.ContentType]string{
	models.ContentNews:        "news",
	models.ContentSharespeare: "sharespeare",
	models.ContentComment:     "comments",
}
