package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"zaikan/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=zaikan_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestUser creates a test user for testing
func SetupTestUser(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = db.Pool.Exec(context.Background(), query, userID, userID.String()+"@test.local", string(hash), time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestItem inserts an inventory item for testing
func CreateTestItem(t *testing.T, db *TestDB, userID uuid.UUID, name, code string, quantity int) *models.Item {
	t.Helper()

	now := time.Now()
	item := &models.Item{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		Code:       code,
		Quantity:   quantity,
		Location:   "Shelf T-1",
		LastInDate: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `
		INSERT INTO items (id, user_id, name, code, quantity, location, last_in_date, last_out_date, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		item.ID, item.UserID, item.Name, item.Code, item.Quantity, item.Location,
		item.LastInDate, item.LastOutDate, item.ImageURL, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	return item
}

// CleanupTestUser removes a test user's data
func CleanupTestUser(t *testing.T, db *TestDB, userID uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	for _, query := range []string{
		`DELETE FROM chat_messages WHERE user_id = $1`,
		`DELETE FROM movement_logs WHERE user_id = $1`,
		`DELETE FROM items WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	} {
		if _, err := db.Pool.Exec(ctx, query, userID); err != nil {
			t.Logf("cleanup query failed: %v", err)
		}
	}
}
