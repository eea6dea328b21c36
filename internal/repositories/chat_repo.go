package repositories

import (
	"context"

	"zaikan/internal/models"

	"github.com/google/uuid"
)

type ChatRepository interface {
	Append(ctx context.Context, message *models.ChatMessage) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type chatRepo struct {
	db DB
}

func NewChatRepo(db DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Append(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, user_id, role, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, message.ID, message.UserID, message.Role, message.Text, message.CreatedAt)
	return err
}

// List returns the latest messages in chronological order.
func (r *chatRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, role, text, created_at
		FROM (
			SELECT id, user_id, role, text, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) latest
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		message := &models.ChatMessage{}
		if err := rows.Scan(&message.ID, &message.UserID, &message.Role, &message.Text, &message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *chatRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID)
	return err
}
