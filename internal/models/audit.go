package models

import (
	"time"

	"github.com/google/uuid"
)

// TransitionAudit records one successful lifecycle transition.
type TransitionAudit struct {
	ID          uuid.UUID   `json:"id"`
	ContentType ContentType `json:"content_type"`
	ContentID   uuid.UUID   `json:"content_id"`
	Action      string      `json:"action"`
	FromStatus  Status      `json:"from_status"`
	ToStatus    Status      `json:"to_status"`
	ActorID     uuid.UUID   `json:"actor_id"`
	Note        *string     `json:"note"`
	CreatedAt   time.Time   `json:"created_at"`
}
