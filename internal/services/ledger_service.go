package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"zaikan/internal/caching"
	"zaikan/internal/models"
	"zaikan/internal/repositories"

	"github.com/google/uuid"
)

// LedgerService owns the item set and its movement log: item lifecycle,
// the two stock transitions, and the read-side views the calendar and the
// assistant consume.
type LedgerService interface {
	ListItems(ctx context.Context, userID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error)
	GetItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error)
	CreateItem(ctx context.Context, userID uuid.UUID, item *models.Item) error
	EditItem(ctx context.Context, userID, itemID uuid.UUID, update *models.ItemUpdate) (*models.Item, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error

	StockIn(ctx context.Context, userID, itemID uuid.UUID, amount int) (*models.Item, error)
	StockOut(ctx context.Context, userID, itemID uuid.UUID, amount int) (*models.Item, error)

	RecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]*models.MovementLogView, error)
}

type ledgerService struct {
	itemRepo     repositories.ItemRepository
	logRepo      repositories.MovementLogRepository
	ledgerRepo   repositories.LedgerRepository
	cacheService caching.CacheService
}

func NewLedgerService(itemRepo repositories.ItemRepository, logRepo repositories.MovementLogRepository,
	ledgerRepo repositories.LedgerRepository, cacheService caching.CacheService) LedgerService {
	return &ledgerService{
		itemRepo:     itemRepo,
		logRepo:      logRepo,
		ledgerRepo:   ledgerRepo,
		cacheService: cacheService,
	}
}

const itemCacheTTL = 5 * time.Minute

func (s *ledgerService) ListItems(ctx context.Context, userID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter == nil {
		filter = &models.ItemSearchFilter{}
	}
	return s.itemRepo.Search(ctx, userID, filter)
}

func (s *ledgerService) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error) {
	if cached, err := s.cacheService.GetItem(ctx, userID, itemID); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors must not fail the read
		log.Printf("cache error for item %s: %v", itemID, err)
	}

	item, err := s.itemRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetItem(ctx, userID, item, itemCacheTTL); cacheErr != nil {
		log.Printf("failed to cache item %s: %v", itemID, cacheErr)
	}
	return item, nil
}

func (s *ledgerService) CreateItem(ctx context.Context, userID uuid.UUID, item *models.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Code = strings.TrimSpace(item.Code)
	if item.Name == "" {
		return models.NewValidationError("name", "name is required")
	}
	if item.Code == "" {
		return models.NewValidationError("code", "code is required")
	}
	if item.Quantity < 0 {
		return models.NewValidationError("quantity", "quantity cannot be negative")
	}

	// Application-level duplicate check; the storage unique index backstops
	// a racing insert.
	if _, err := s.itemRepo.GetByCode(ctx, userID, item.Code); err == nil {
		return models.ErrDuplicateCode
	} else if !errors.Is(err, models.ErrItemNotFound) {
		return err
	}

	now := time.Now()
	item.ID = uuid.New()
	item.UserID = userID
	// The seed quantity counts as the first inbound event
	item.LastInDate = &now
	item.LastOutDate = nil

	return s.itemRepo.Create(ctx, item)
}

func (s *ledgerService) EditItem(ctx context.Context, userID, itemID uuid.UUID, update *models.ItemUpdate) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, models.NewValidationError("name", "name is required")
		}
		item.Name = name
	}
	if update.Quantity != nil {
		if *update.Quantity < 0 {
			return nil, models.NewValidationError("quantity", "quantity cannot be negative")
		}
		item.Quantity = *update.Quantity
	}
	if update.Location != nil {
		item.Location = *update.Location
	}
	if update.ImageURL != nil {
		item.ImageURL = update.ImageURL
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.DeleteItem(ctx, userID, itemID); cacheErr != nil {
		log.Printf("failed to invalidate cache for item %s: %v", itemID, cacheErr)
	}
	return item, nil
}

// DeleteItem removes the item permanently. Movement log entries referencing
// it are kept; readers see them flagged as orphaned.
func (s *ledgerService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.itemRepo.Delete(ctx, userID, itemID); err != nil {
		return err
	}
	if cacheErr := s.cacheService.DeleteItem(ctx, userID, itemID); cacheErr != nil {
		log.Printf("failed to invalidate cache for item %s: %v", itemID, cacheErr)
	}
	return nil
}

// StockIn adds amount to the item and appends the matching inbound log
// entry in one transaction.
//
// Two concurrent movements on the same item race on the read-modify-write
// of quantity; the last write wins. There is no version token on items.
func (s *ledgerService) StockIn(ctx context.Context, userID, itemID uuid.UUID, amount int) (*models.Item, error) {
	return s.applyMovement(ctx, userID, itemID, models.DirectionIn, amount)
}

// StockOut removes amount from the item, rejecting movements that would
// drive the quantity negative.
func (s *ledgerService) StockOut(ctx context.Context, userID, itemID uuid.UUID, amount int) (*models.Item, error) {
	return s.applyMovement(ctx, userID, itemID, models.DirectionOut, amount)
}

func (s *ledgerService) applyMovement(ctx context.Context, userID, itemID uuid.UUID, direction string, amount int) (*models.Item, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("quantity", "quantity must be positive")
	}

	item, err := s.itemRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	switch direction {
	case models.DirectionIn:
		item.Quantity += amount
		item.LastInDate = &now
	case models.DirectionOut:
		if item.Quantity < amount {
			return nil, fmt.Errorf("%w: have %d, requested %d", models.ErrInsufficientStock, item.Quantity, amount)
		}
		item.Quantity -= amount
		item.LastOutDate = &now
	default:
		return nil, models.NewValidationError("direction", "direction must be in or out")
	}

	entry := &models.MovementLog{
		ID:         uuid.New(),
		UserID:     userID,
		ItemID:     item.ID,
		ItemName:   item.Name, // captured at event time, survives rename and delete
		Direction:  direction,
		Quantity:   amount,
		OccurredAt: now,
	}

	if err := s.ledgerRepo.ApplyMovement(ctx, item, entry); err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.DeleteItem(ctx, userID, itemID); cacheErr != nil {
		log.Printf("failed to invalidate cache for item %s: %v", itemID, cacheErr)
	}
	return item, nil
}

// RecentLogs returns the newest entries first, each flagged when its item
// no longer exists. The stored item name is served either way.
func (s *ledgerService) RecentLogs(ctx context.Context, userID uuid.UUID, limit int) ([]*models.MovementLogView, error) {
	entries, err := s.logRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(entries))
	seen := make(map[uuid.UUID]bool, len(entries))
	for _, entry := range entries {
		if !seen[entry.ItemID] {
			seen[entry.ItemID] = true
			ids = append(ids, entry.ItemID)
		}
	}

	existing, err := s.itemRepo.ExistingIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.MovementLogView, len(entries))
	for i, entry := range entries {
		views[i] = &models.MovementLogView{
			MovementLog: *entry,
			Orphaned:    !existing[entry.ItemID],
		}
	}
	return views, nil
}
