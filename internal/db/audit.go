package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"campusboard/internal/lifecycle"
	"campusboard/internal/models"
)

// AuditRecorder is a lifecycle hook that writes one transition_audit row
// per successful status change.
type AuditRecorder struct {
	db *DB
}

func (d *DB) AuditRecorder() *AuditRecorder {
	return &AuditRecorder{db: d}
}

func (a *AuditRecorder) AfterTransition(ctx context.Context, ev lifecycle.Event) error {
	if !ev.StatusChanged() || ev.Actor == nil {
		return nil
	}
	_, err := a.db.Pool.Exec(ctx, `
		INSERT INTO transition_audit (content_type, content_id, action, from_status, to_status, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ev.ContentType, ev.ItemID, string(ev.Action), ev.From, ev.To, ev.Actor.ID, ev.Note, ev.At)
	return err
}

// ListTransitions returns the audit trail of one item, oldest first.
func (d *DB) ListTransitions(ctx context.Context, contentType models.ContentType, id uuid.UUID) ([]models.TransitionAudit, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, content_type, content_id, action, from_status, to_status, actor_id, note, created_at
		FROM transition_audit
		WHERE content_type = $1 AND content_id = $2
		ORDER BY created_at ASC, id ASC
	`, contentType, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TransitionAudit, error) {
		var t models.TransitionAudit
		err := row.Scan(&t.ID, &t.ContentType, &t.ContentID, &t.Action, &t.FromStatus, &t.ToStatus, &t.ActorID, &t.Note, &t.CreatedAt)
		return t, err
	})
}
