package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zaikan/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Item, error)
	GetByCode(ctx context.Context, userID uuid.UUID, code string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error)
	ExistingIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type itemRepo struct {
	db DB
}

func NewItemRepo(db DB) ItemRepository {
	return &itemRepo{db: db}
}

const itemColumns = `id, user_id, name, code, quantity, location, last_in_date, last_out_date, image_url, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.UserID, &item.Name, &item.Code, &item.Quantity, &item.Location,
		&item.LastInDate, &item.LastOutDate, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, user_id, name, code, quantity, location, last_in_date, last_out_date, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.UserID, item.Name, item.Code, item.Quantity,
		item.Location, item.LastInDate, item.LastOutDate, item.ImageURL)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE user_id = $1 AND id = $2
	`
	return scanItem(r.db.QueryRow(ctx, query, userID, id))
}

func (r *itemRepo) GetByCode(ctx context.Context, userID uuid.UUID, code string) (*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE user_id = $1 AND code = $2
	`
	return scanItem(r.db.QueryRow(ctx, query, userID, code))
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, quantity = $2, location = $3, last_in_date = $4, last_out_date = $5, image_url = $6, updated_at = NOW()
		WHERE user_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, item.Name, item.Quantity, item.Location,
		item.LastInDate, item.LastOutDate, item.ImageURL, item.UserID, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrItemNotFound
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM items WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrItemNotFound
	}
	return nil
}

// likeEscaper neutralizes LIKE metacharacters so a search for "100%" matches
// the literal text instead of acting as a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Search filters by case-insensitive substring across name, code and
// location, then sorts by a single whitelisted field. created_at is the
// secondary key so equal values keep a deterministic order.
func (r *itemRepo) Search(ctx context.Context, userID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	queryBase := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE user_id = $1
	`
	args := []any{userID}
	conditionCount := 1

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d OR location ILIKE $%d)`,
			conditionCount, conditionCount, conditionCount)
		args = append(args, "%"+escapeLike(filter.Query)+"%")
	}

	sortField := "updated_at"
	switch filter.SortBy {
	case "name", "code", "quantity", "location", "updated_at":
		sortField = filter.SortBy
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s, created_at ASC`, sortField, sortOrder)

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Code, &item.Quantity, &item.Location,
			&item.LastInDate, &item.LastOutDate, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ExistingIDs reports which of the given item ids still exist for the user.
// Used to flag orphaned movement log entries.
func (r *itemRepo) ExistingIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	existing := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	query := `SELECT id FROM items WHERE user_id = $1 AND id = ANY($2::uuid[])`
	rows, err := r.db.Query(ctx, query, userID, idStrs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}
