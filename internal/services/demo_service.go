package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"zaikan/internal/caching"
	"zaikan/internal/models"
	"zaikan/internal/repositories"

	"github.com/google/uuid"
)

var demoImages = []string{
	"https://picsum.photos/id/1/200/200",
	"https://picsum.photos/id/20/200/200",
	"https://picsum.photos/id/36/200/200",
	"https://picsum.photos/id/48/200/200",
	"https://picsum.photos/id/60/200/200",
}

const (
	demoItemCount = 15
	demoLogCount  = 20
)

// DemoService replaces the caller's ledger with a generated sample dataset.
type DemoService interface {
	Seed(ctx context.Context, userID uuid.UUID) error
}

type demoService struct {
	ledgerRepo   repositories.LedgerRepository
	cacheService caching.CacheService
}

func NewDemoService(ledgerRepo repositories.LedgerRepository, cacheService caching.CacheService) DemoService {
	return &demoService{ledgerRepo: ledgerRepo, cacheService: cacheService}
}

// Seed builds the demo items and a month of movement history, then installs
// them in a single batch. The batch is all-or-nothing: a failure midway
// leaves the previous ledger untouched.
func (s *demoService) Seed(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()

	items := make([]*models.Item, demoItemCount)
	for i := range items {
		lastIn := now
		imageURL := demoImages[i%len(demoImages)]
		items[i] = &models.Item{
			ID:         uuid.New(),
			UserID:     userID,
			Name:       fmt.Sprintf("商品サンプル %c", rune('A'+i)),
			Code:       fmt.Sprintf("CODE-%d", 1000+i),
			Quantity:   rand.Intn(100),
			Location:   fmt.Sprintf("棚番 %d-%d", i/5+1, i%5+1),
			ImageURL:   &imageURL,
			LastInDate: &lastIn,
		}
	}

	entries := make([]*models.MovementLog, demoLogCount)
	for i := range entries {
		item := items[rand.Intn(len(items))]
		direction := models.DirectionIn
		if rand.Intn(2) == 0 {
			direction = models.DirectionOut
		}
		day := rand.Intn(28) + 1
		entries[i] = &models.MovementLog{
			ID:         uuid.New(),
			UserID:     userID,
			ItemID:     item.ID,
			ItemName:   item.Name,
			Direction:  direction,
			Quantity:   rand.Intn(10) + 1,
			OccurredAt: time.Date(now.Year(), now.Month(), day, 12, 0, 0, 0, time.Local),
		}
	}

	if err := s.ledgerRepo.SeedBatch(ctx, userID, items, entries); err != nil {
		return err
	}

	if cacheErr := s.cacheService.InvalidateUserCache(ctx, userID); cacheErr != nil {
		log.Printf("failed to invalidate cache after demo seed for %s: %v", userID, cacheErr)
	}
	return nil
}
