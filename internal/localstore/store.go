// Package localstore is a single-file storage adapter for running without a
// database. It implements the same repository interfaces as the Postgres
// adapter, backed by one versioned JSON document with the accounts, items,
// movement logs and chat transcript as plain collections.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"zaikan/internal/models"
	"zaikan/internal/repositories"

	"github.com/google/uuid"
)

// documentVersion tags the on-disk layout so a future migration can detect
// old files.
const documentVersion = 1

type document struct {
	Version int                    `json:"version"`
	Users   []*models.User         `json:"users"`
	Items   []*models.Item         `json:"items"`
	Logs    []*models.MovementLog  `json:"logs"`
	Chat    []*models.ChatMessage  `json:"chat"`
}

// Store owns the document and serializes all access. It is an explicit
// object handed to services, not process-global state.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the document at path, creating an empty one if the file does
// not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: document{Version: documentVersion}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	if s.doc.Version != documentVersion {
		return nil, fmt.Errorf("unsupported store version %d", s.doc.Version)
	}
	return s, nil
}

// flush writes the whole document atomically (temp file + rename), so a
// crash mid-write never leaves a torn file. Single-writer callers get the
// item-plus-log atomicity for free: one flush covers both.
func (s *Store) flush() error {
	s.doc.Version = documentVersion
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func cloneItem(item *models.Item) *models.Item {
	c := *item
	return &c
}

// Create inserts an item, enforcing the unique product code per user as the
// storage-level backstop.
func (s *Store) Create(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Items {
		if existing.UserID == item.UserID && existing.Code == item.Code {
			return models.ErrDuplicateCode
		}
	}

	c := cloneItem(item)
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	item.CreatedAt = now
	item.UpdatedAt = now

	s.doc.Items = append(s.doc.Items, c)
	return s.flush()
}

func (s *Store) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findItem(userID, id); item != nil {
		return cloneItem(item), nil
	}
	return nil, models.ErrItemNotFound
}

func (s *Store) GetByCode(_ context.Context, userID uuid.UUID, code string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.doc.Items {
		if item.UserID == userID && item.Code == code {
			return cloneItem(item), nil
		}
	}
	return nil, models.ErrItemNotFound
}

func (s *Store) Update(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.findItem(item.UserID, item.ID)
	if stored == nil {
		return models.ErrItemNotFound
	}

	stored.Name = item.Name
	stored.Quantity = item.Quantity
	stored.Location = item.Location
	stored.LastInDate = item.LastInDate
	stored.LastOutDate = item.LastOutDate
	stored.ImageURL = item.ImageURL
	stored.UpdatedAt = time.Now()
	item.UpdatedAt = stored.UpdatedAt
	return s.flush()
}

// Delete removes the item permanently. Movement logs referencing it stay.
func (s *Store) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.doc.Items {
		if item.UserID == userID && item.ID == id {
			s.doc.Items = append(s.doc.Items[:i], s.doc.Items[i+1:]...)
			return s.flush()
		}
	}
	return models.ErrItemNotFound
}

// Search mirrors the Postgres adapter: case-insensitive substring filter on
// name/code/location, single-field sort defaulting to updated_at descending.
// SliceStable keeps the relative input order for equal keys.
func (s *Store) Search(_ context.Context, userID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.ToLower(filter.Query)
	var out []*models.Item
	for _, item := range s.doc.Items {
		if item.UserID != userID {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Name), query) &&
			!strings.Contains(strings.ToLower(item.Code), query) &&
			!strings.Contains(strings.ToLower(item.Location), query) {
			continue
		}
		out = append(out, cloneItem(item))
	}

	sortItems(out, filter.SortBy, !strings.EqualFold(filter.SortOrder, "asc"))

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortItems(items []*models.Item, field string, desc bool) {
	var less func(a, b *models.Item) bool
	switch field {
	case "name":
		less = func(a, b *models.Item) bool { return a.Name < b.Name }
	case "code":
		less = func(a, b *models.Item) bool { return a.Code < b.Code }
	case "quantity":
		less = func(a, b *models.Item) bool { return a.Quantity < b.Quantity }
	case "location":
		less = func(a, b *models.Item) bool { return a.Location < b.Location }
	default:
		// Matches the Postgres adapter's default ordering.
		less = func(a, b *models.Item) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (s *Store) ExistingIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if s.findItem(userID, id) != nil {
			existing[id] = true
		}
	}
	return existing, nil
}

func (s *Store) findItem(userID, id uuid.UUID) *models.Item {
	for _, item := range s.doc.Items {
		if item.UserID == userID && item.ID == id {
			return item
		}
	}
	return nil
}

func (s *Store) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]*models.MovementLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	var out []*models.MovementLog
	for _, entry := range s.doc.Logs {
		if entry.UserID == userID {
			e := *entry
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListRange keeps insertion order within the window.
func (s *Store) ListRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*models.MovementLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.MovementLog
	for _, entry := range s.doc.Logs {
		if entry.UserID != userID {
			continue
		}
		if entry.OccurredAt.Before(from) || !entry.OccurredAt.Before(to) {
			continue
		}
		e := *entry
		out = append(out, &e)
	}
	return out, nil
}

// ApplyMovement updates the item and appends the log entry under one lock
// and one flush, the file-store equivalent of the Postgres transaction.
func (s *Store) ApplyMovement(_ context.Context, item *models.Item, entry *models.MovementLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.findItem(item.UserID, item.ID)
	if stored == nil {
		return models.ErrItemNotFound
	}

	stored.Quantity = item.Quantity
	stored.LastInDate = item.LastInDate
	stored.LastOutDate = item.LastOutDate
	stored.UpdatedAt = time.Now()

	e := *entry
	s.doc.Logs = append(s.doc.Logs, &e)
	return s.flush()
}

// SeedBatch replaces the user's ledger with the demo dataset in one write.
func (s *Store) SeedBatch(_ context.Context, userID uuid.UUID, items []*models.Item, entries []*models.MovementLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Items[:0]
	for _, item := range s.doc.Items {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	s.doc.Items = kept

	keptLogs := s.doc.Logs[:0]
	for _, entry := range s.doc.Logs {
		if entry.UserID != userID {
			keptLogs = append(keptLogs, entry)
		}
	}
	s.doc.Logs = keptLogs

	now := time.Now()
	for _, item := range items {
		c := cloneItem(item)
		c.CreatedAt = now
		c.UpdatedAt = now
		s.doc.Items = append(s.doc.Items, c)
	}
	for _, entry := range entries {
		e := *entry
		s.doc.Logs = append(s.doc.Logs, &e)
	}
	return s.flush()
}

// chatView adapts the message methods to repositories.ChatRepository, so the
// transcript methods can keep their longer names on Store.
type chatView struct {
	s *Store
}

// Chat returns the store's transcript as a repositories.ChatRepository.
func (s *Store) Chat() repositories.ChatRepository {
	return chatView{s: s}
}

func (v chatView) Append(ctx context.Context, message *models.ChatMessage) error {
	return v.s.AppendMessage(ctx, message)
}

func (v chatView) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	return v.s.ListMessages(ctx, userID, limit)
}

func (v chatView) Clear(ctx context.Context, userID uuid.UUID) error {
	return v.s.ClearMessages(ctx, userID)
}

// AppendMessage adds a chat turn to the transcript.
func (s *Store) AppendMessage(_ context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := *message
	s.doc.Chat = append(s.doc.Chat, &m)
	return s.flush()
}

// ListMessages returns the latest messages in chronological order.
func (s *Store) ListMessages(_ context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	var out []*models.ChatMessage
	for _, message := range s.doc.Chat {
		if message.UserID == userID {
			m := *message
			out = append(out, &m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// userView adapts the user methods to repositories.UserRepository; the item
// side already claims the bare Create name on Store.
type userView struct {
	s *Store
}

// Users returns the store's account records as a repositories.UserRepository.
func (s *Store) Users() repositories.UserRepository {
	return userView{s: s}
}

func (v userView) Create(ctx context.Context, user *models.User) error {
	return v.s.CreateUser(ctx, user)
}

func (v userView) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return v.s.GetUserByID(ctx, id)
}

func (v userView) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return v.s.GetUserByEmail(ctx, email)
}

// CreateUser registers an account, enforcing the unique email.
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Users {
		if existing.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}

	u := *user
	u.CreatedAt = time.Now()
	user.CreatedAt = u.CreatedAt
	s.doc.Users = append(s.doc.Users, &u)
	return s.flush()
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.doc.Users {
		if user.ID == id {
			u := *user
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.doc.Users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *Store) ClearMessages(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Chat[:0]
	for _, message := range s.doc.Chat {
		if message.UserID != userID {
			kept = append(kept, message)
		}
	}
	s.doc.Chat = kept
	return s.flush()
}
