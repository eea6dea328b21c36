package models

import (
	"time"

	"github.com/google/uuid"
)

// Movement directions
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// MovementLog is one inbound or outbound stock event. Entries are
// append-only: they are never updated or deleted, even when the referenced
// item is renamed or removed. ItemName is captured at event time so the
// history stays readable after deletion.
type MovementLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	ItemID     uuid.UUID `json:"item_id" db:"item_id"`
	ItemName   string    `json:"item_name" db:"item_name"`
	Direction  string    `json:"direction" db:"direction"`
	Quantity   int       `json:"quantity" db:"quantity"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
}

// MovementLogView is a log entry as served by the API. Orphaned is set when
// the referenced item no longer exists; the stored name is served as-is.
type MovementLogView struct {
	MovementLog
	Orphaned bool `json:"orphaned"`
}

// DaySummary is one calendar cell: the number of inbound and outbound
// entries on a single day of the month. Days without movements carry zero
// counts rather than being omitted.
type DaySummary struct {
	Day int `json:"day"`
	In  int `json:"in"`
	Out int `json:"out"`
}
