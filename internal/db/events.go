package db

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campusboard/internal/models"
)

const eventColumns = `id, title, description, location, starts_at, ends_at, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartsAt,
		&e.EndsAt,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, location, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (d *DB) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(d.Pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// UpdateEvent overwrites the editable fields of an event.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	updated, err := scanEvent(d.Pool.QueryRow(ctx, `
		UPDATE events SET
			title = $1, description = $2, location = $3, starts_at = $4, ends_at = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+eventColumns,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.ID,
	))
	if err != nil {
		return err
	}
	*event = *updated
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListEvents returns events overlapping [From, To], earliest first.
func (d *DB) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	filter = filter.Normalize()
	var conds []string
	var args []any
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, "COALESCE(ends_at, starts_at) >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, "starts_at <= $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + eventColumns + ` FROM events` + where +
		` ORDER BY starts_at ASC, id ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := d.Pool.Query(ctx, query, append(args, filter.Limit, models.PageOffset(filter.Page, filter.Limit))...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *e)
	}
	return events, total, rows.Err()
}
