package repositories

import (
	"context"
	"fmt"

	"zaikan/internal/models"

	"github.com/google/uuid"
)

// LedgerRepository covers the operations that must touch the item set and
// the movement log together. Both writes commit in one transaction, so a
// quantity change is never visible without its log entry and vice versa.
type LedgerRepository interface {
	ApplyMovement(ctx context.Context, item *models.Item, entry *models.MovementLog) error
	SeedBatch(ctx context.Context, userID uuid.UUID, items []*models.Item, entries []*models.MovementLog) error
}

type ledgerRepo struct {
	db DB
}

func NewLedgerRepo(db DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

// ApplyMovement persists an already-validated stock movement: the item row
// carries the new quantity and last-in/last-out dates, the entry is the
// matching log record.
func (r *ledgerRepo) ApplyMovement(ctx context.Context, item *models.Item, entry *models.MovementLog) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE items
		SET quantity = $1, last_in_date = $2, last_out_date = $3, updated_at = NOW()
		WHERE user_id = $4 AND id = $5
	`
	tag, err := tx.Exec(ctx, updateQuery, item.Quantity, item.LastInDate, item.LastOutDate, item.UserID, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrItemNotFound
	}

	if _, err := tx.Exec(ctx, movementLogInsert, entry.ID, entry.UserID, entry.ItemID,
		entry.ItemName, entry.Direction, entry.Quantity, entry.OccurredAt); err != nil {
		return fmt.Errorf("append movement log: %w", err)
	}

	return tx.Commit(ctx)
}

// SeedBatch replaces the user's ledger with the given demo dataset in one
// transaction. A failure leaves the previous state untouched.
func (r *ledgerRepo) SeedBatch(ctx context.Context, userID uuid.UUID, items []*models.Item, entries []*models.MovementLog) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM movement_logs WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM items WHERE user_id = $1`, userID); err != nil {
		return err
	}

	insertItem := `
		INSERT INTO items (id, user_id, name, code, quantity, location, last_in_date, last_out_date, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	for _, item := range items {
		if _, err := tx.Exec(ctx, insertItem, item.ID, item.UserID, item.Name, item.Code,
			item.Quantity, item.Location, item.LastInDate, item.LastOutDate, item.ImageURL); err != nil {
			return fmt.Errorf("seed item %s: %w", item.Code, err)
		}
	}
	for _, entry := range entries {
		if _, err := tx.Exec(ctx, movementLogInsert, entry.ID, entry.UserID, entry.ItemID,
			entry.ItemName, entry.Direction, entry.Quantity, entry.OccurredAt); err != nil {
			return fmt.Errorf("seed log for %s: %w", entry.ItemName, err)
		}
	}

	return tx.Commit(ctx)
}
