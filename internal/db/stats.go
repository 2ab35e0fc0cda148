package db

import (
	"context"
	"time"

	"campusboard/internal/models"
)

// CountByStatus returns item counts per content type and status.
func (d *DB) CountByStatus(ctx context.Context) (map[models.ContentType]map[models.Status]int, error) {
	counts := make(map[models.ContentType]map[models.Status]int, len(contentTables))
	for contentType, table := range contentTables {
		rows, err := d.Pool.Query(ctx, `SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
		if err != nil {
			return nil, err
		}
		byStatus := make(map[models.Status]int)
		for rows.Next() {
			var status models.Status
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				rows.Close()
				return nil, err
			}
			byStatus[status] = n
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		counts[contentType] = byStatus
	}
	return counts, nil
}

// CountPendingSince returns, per content type, how many items have been
// waiting for review since before cutoff.
func (d *DB) CountPendingSince(ctx context.Context, cutoff time.Time) (map[models.ContentType]int, error) {
	counts := make(map[models.ContentType]int, len(contentTables))
	for contentType, table := range contentTables {
		var n int
		err := d.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE status = $1 AND submitted_at < $2`,
			models.StatusPending, cutoff,
		).Scan(&n)
		if err != nil {
			return nil, err
		}
		counts[contentType] = n
	}
	return counts, nil
}
