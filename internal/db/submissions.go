package db

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campusboard/internal/lifecycle"
	"campusboard/internal/models"
)

// headerColumns is the lifecycle column list shared by every moderated table.
const headerColumns = `id, author_id, status, created_at, updated_at,
	submitted_at, published_at, reviewed_by, reviewed_at, review_note`

func headerTargets(h *models.Header) []any {
	return []any{
		&h.ID,
		&h.AuthorID,
		&h.Status,
		&h.CreatedAt,
		&h.UpdatedAt,
		&h.SubmittedAt,
		&h.PublishedAt,
		&h.ReviewedBy,
		&h.ReviewedAt,
		&h.ReviewNote,
	}
}

func headerValues(h *models.Header) []any {
	return []any{
		h.ID,
		h.AuthorID,
		h.Status,
		h.CreatedAt,
		h.UpdatedAt,
		h.SubmittedAt,
		h.PublishedAt,
		h.ReviewedBy,
		h.ReviewedAt,
		h.ReviewNote,
	}
}

// table describes how one content type maps onto its table.
type table[T lifecycle.Subject] struct {
	name     string
	payload  []string      // payload columns, in order
	values   func(T) []any // payload values, matching payload
	targets  func(T) []any // payload scan targets, matching payload
	newItem  func() T
	category string   // column matched by ListFilter.Category
	parent   string   // column matched by ListFilter.TopicID
	search   []string // columns matched by ListFilter.Search
}

func (t table[T]) columns() string {
	return headerColumns + ", " + strings.Join(t.payload, ", ")
}

// SubmissionRepo implements lifecycle.Store on a Postgres table. Every write
// is a single statement conditioned on the expected status.
type SubmissionRepo[T lifecycle.Subject] struct {
	db *DB
	t  table[T]
}

func (r *SubmissionRepo[T]) scan(row pgx.Row) (T, error) {
	item := r.t.newItem()
	targets := append(headerTargets(item.Meta()), r.t.targets(item)...)
	if err := row.Scan(targets...); err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, lifecycle.ErrNotFound
		}
		return zero, err
	}
	return item, nil
}

func (r *SubmissionRepo[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	query := `SELECT ` + r.t.columns() + ` FROM ` + r.t.name + ` WHERE id = $1`
	return r.scan(r.db.Pool.QueryRow(ctx, query, id))
}

// escapeLike escapes LIKE wildcards so search input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// where builds the WHERE clause for a filter. Each "?" in a condition is
// bound to that condition's single argument.
func (r *SubmissionRepo[T]) where(filter models.ListFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if filter.Status != "" {
		add("status = ?", filter.Status)
	}
	if filter.AuthorID != nil {
		add("author_id = ?", *filter.AuthorID)
	}
	if filter.Category != "" && r.t.category != "" {
		add(r.t.category+" = ?", filter.Category)
	}
	if filter.TopicID != nil && r.t.parent != "" {
		add(r.t.parent+" = ?", *filter.TopicID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" && len(r.t.search) > 0 {
		var ors []string
		for _, col := range r.t.search {
			ors = append(ors, col+` ILIKE ? ESCAPE '\'`)
		}
		add("("+strings.Join(ors, " OR ")+")", "%"+escapeLike(search)+"%")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *SubmissionRepo[T]) List(ctx context.Context, filter models.ListFilter) ([]T, int, error) {
	filter = filter.Normalize()
	where, args := r.where(filter)

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+r.t.name+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + r.t.columns() + ` FROM ` + r.t.name + where +
		` ORDER BY created_at DESC, id ASC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.db.Pool.Query(ctx, query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *SubmissionRepo[T]) Create(ctx context.Context, item T) error {
	values := append(headerValues(item.Meta()), r.t.values(item)...)
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	query := `INSERT INTO ` + r.t.name + ` (` + r.t.columns() + `) VALUES (` + strings.Join(placeholders, ", ") + `)`
	_, err := r.db.Pool.Exec(ctx, query, values...)
	return err
}

// Update writes payload columns, status and updated_at.
func (r *SubmissionRepo[T]) Update(ctx context.Context, item T, expected models.Status) error {
	h := item.Meta()
	args := r.t.values(item)
	sets := make([]string, 0, len(r.t.payload)+2)
	for i, col := range r.t.payload {
		sets = append(sets, col+" = $"+strconv.Itoa(i+1))
	}
	n := len(args)
	sets = append(sets,
		"status = $"+strconv.Itoa(n+1),
		"updated_at = $"+strconv.Itoa(n+2),
	)
	args = append(args, h.Status, h.UpdatedAt, h.ID, h.AuthorID, expected)

	query := `UPDATE ` + r.t.name + ` SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(n+3) +
		` AND author_id = $` + strconv.Itoa(n+4) +
		` AND status = $` + strconv.Itoa(n+5)

	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrStale
	}
	return nil
}

// Transition applies change when the row still has status expected. The
// statement mirrors lifecycle.Change.Apply.
func (r *SubmissionRepo[T]) Transition(ctx context.Context, id uuid.UUID, expected models.Status, change lifecycle.Change) (T, error) {
	var reviewedAt any
	if change.ReviewedBy != nil {
		reviewedAt = change.At
	}

	query := `
		UPDATE ` + r.t.name + ` SET
			status = $1,
			updated_at = $2,
			submitted_at = CASE WHEN $3::boolean THEN $2 ELSE submitted_at END,
			published_at = CASE WHEN $4::boolean THEN COALESCE(published_at, $2) ELSE published_at END,
			reviewed_by = CASE WHEN $5::boolean THEN $6::uuid ELSE reviewed_by END,
			reviewed_at = CASE WHEN $5::boolean THEN $7::timestamptz ELSE reviewed_at END,
			review_note = CASE WHEN $5::boolean THEN $8::text ELSE review_note END
		WHERE id = $9 AND status = $10
		RETURNING ` + r.t.columns()

	item, err := r.scan(r.db.Pool.QueryRow(ctx, query,
		change.To,
		change.At,
		change.StampSubmitted,
		change.StampPublished,
		change.SetReview,
		change.ReviewedBy,
		reviewedAt,
		change.ReviewNote,
		id,
		expected,
	))
	if errors.Is(err, lifecycle.ErrNotFound) {
		var zero T
		return zero, lifecycle.ErrStale
	}
	return item, err
}

func (r *SubmissionRepo[T]) Delete(ctx context.Context, id, authorID uuid.UUID, expected models.Status) error {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM `+r.t.name+` WHERE id = $1 AND author_id = $2 AND status = $3`,
		id, authorID, expected,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return lifecycle.ErrStale
	}
	return nil
}
