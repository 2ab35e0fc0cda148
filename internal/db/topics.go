package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campusboard/internal/models"
)

const topicColumns = `id, title, body, author_id, status, created_at, updated_at`

func scanTopic(row pgx.Row) (*models.Topic, error) {
	var t models.Topic
	err := row.Scan(&t.ID, &t.Title, &t.Body, &t.AuthorID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTopic inserts an OPEN topic.
func (d *DB) CreateTopic(ctx context.Context, topic *models.Topic) error {
	query := `
		INSERT INTO topics (title, body, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query, topic.Title, topic.Body, topic.AuthorID).
		Scan(&topic.ID, &topic.Status, &topic.CreatedAt, &topic.UpdatedAt)
}

func (d *DB) GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	return scanTopic(d.Pool.QueryRow(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1`, id))
}

// ListTopics returns topics newest first.
func (d *DB) ListTopics(ctx context.Context, page, limit int) ([]models.Topic, int, error) {
	var total int
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM topics`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT `+topicColumns+`
		FROM topics
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, models.PageOffset(page, limit))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, 0, err
		}
		topics = append(topics, *t)
	}
	return topics, total, rows.Err()
}

// SetTopicStatus moves a topic from one status to another. It returns
// ErrTopicStateChanged when the topic is no longer in status from.
func (d *DB) SetTopicStatus(ctx context.Context, id uuid.UUID, from, to models.TopicStatus) (*models.Topic, error) {
	topic, err := scanTopic(d.Pool.QueryRow(ctx, `
		UPDATE topics SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING `+topicColumns,
		to, id, from,
	))
	if errors.Is(err, ErrTopicNotFound) {
		return nil, ErrTopicStateChanged
	}
	return topic, err
}
