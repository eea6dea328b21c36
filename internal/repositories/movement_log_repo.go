package repositories

import (
	"context"
	"time"

	"zaikan/internal/models"

	"github.com/google/uuid"
)

type MovementLogRepository interface {
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.MovementLog, error)
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.MovementLog, error)
}

type movementLogRepo struct {
	db DB
}

func NewMovementLogRepo(db DB) MovementLogRepository {
	return &movementLogRepo{db: db}
}

// movementLogInsert is shared with the ledger repository, which writes log
// entries inside the same transaction as the item update.
const movementLogInsert = `
	INSERT INTO movement_logs (id, user_id, item_id, item_name, direction, quantity, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// ListRecent returns the newest entries first.
func (r *movementLogRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.MovementLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, user_id, item_id, item_name, direction, quantity, occurred_at
		FROM movement_logs
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	return r.queryLogs(ctx, query, userID, limit)
}

// ListRange returns entries with from <= occurred_at < to, oldest first.
func (r *movementLogRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.MovementLog, error) {
	query := `
		SELECT id, user_id, item_id, item_name, direction, quantity, occurred_at
		FROM movement_logs
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at ASC
	`
	return r.queryLogs(ctx, query, userID, from, to)
}

func (r *movementLogRepo) queryLogs(ctx context.Context, query string, args ...any) ([]*models.MovementLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.MovementLog
	for rows.Next() {
		entry := &models.MovementLog{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ItemID, &entry.ItemName,
			&entry.Direction, &entry.Quantity, &entry.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
