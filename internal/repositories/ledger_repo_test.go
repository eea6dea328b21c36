package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"zaikan/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type LedgerRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    LedgerRepository
	userID  uuid.UUID
	context context.Context
}

func (suite *LedgerRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewLedgerRepo(mock)
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *LedgerRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestLedgerRepoTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerRepoTestSuite))
}

func (suite *LedgerRepoTestSuite) movement() (*models.Item, *models.MovementLog) {
	now := time.Now()
	item := &models.Item{
		ID:         uuid.New(),
		UserID:     suite.userID,
		Name:       "Widget",
		Quantity:   8,
		LastInDate: &now,
	}
	entry := &models.MovementLog{
		ID:         uuid.New(),
		UserID:     suite.userID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		Direction:  models.DirectionIn,
		Quantity:   3,
		OccurredAt: now,
	}
	return item, entry
}

func (suite *LedgerRepoTestSuite) TestApplyMovement_CommitsBothWrites() {
	item, entry := suite.movement()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE items`).
		WithArgs(item.Quantity, item.LastInDate, item.LastOutDate, item.UserID, item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO movement_logs`).
		WithArgs(entry.ID, entry.UserID, entry.ItemID, entry.ItemName,
			entry.Direction, entry.Quantity, entry.OccurredAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.ApplyMovement(suite.context, item, entry)
	assert.NoError(suite.T(), err)
}

func (suite *LedgerRepoTestSuite) TestApplyMovement_ItemGoneRollsBack() {
	item, entry := suite.movement()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE items`).
		WithArgs(item.Quantity, item.LastInDate, item.LastOutDate, item.UserID, item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	err := suite.repo.ApplyMovement(suite.context, item, entry)
	assert.ErrorIs(suite.T(), err, models.ErrItemNotFound)
}

func (suite *LedgerRepoTestSuite) TestApplyMovement_LogInsertFailureRollsBack() {
	item, entry := suite.movement()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE items`).
		WithArgs(item.Quantity, item.LastInDate, item.LastOutDate, item.UserID, item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO movement_logs`).
		WithArgs(entry.ID, entry.UserID, entry.ItemID, entry.ItemName,
			entry.Direction, entry.Quantity, entry.OccurredAt).
		WillReturnError(errors.New("disk full"))
	suite.mock.ExpectRollback()

	// The quantity change must not survive without its log entry
	err := suite.repo.ApplyMovement(suite.context, item, entry)
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, models.ErrItemNotFound)
}

func (suite *LedgerRepoTestSuite) TestSeedBatch_ReplacesLedgerInOneTransaction() {
	now := time.Now()
	items := []*models.Item{
		{ID: uuid.New(), UserID: suite.userID, Name: "Sample A", Code: "CODE-1000", Quantity: 4, Location: "1-1", LastInDate: &now},
	}
	entries := []*models.MovementLog{
		{ID: uuid.New(), UserID: suite.userID, ItemID: items[0].ID, ItemName: "Sample A",
			Direction: models.DirectionOut, Quantity: 2, OccurredAt: now},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM movement_logs`).
		WithArgs(suite.userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	suite.mock.ExpectExec(`DELETE FROM items`).
		WithArgs(suite.userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectExec(`INSERT INTO items`).
		WithArgs(items[0].ID, items[0].UserID, items[0].Name, items[0].Code, items[0].Quantity,
			items[0].Location, items[0].LastInDate, items[0].LastOutDate, items[0].ImageURL).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO movement_logs`).
		WithArgs(entries[0].ID, entries[0].UserID, entries[0].ItemID, entries[0].ItemName,
			entries[0].Direction, entries[0].Quantity, entries[0].OccurredAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.SeedBatch(suite.context, suite.userID, items, entries)
	assert.NoError(suite.T(), err)
}

func (suite *LedgerRepoTestSuite) TestSeedBatch_InsertFailureLeavesOldState() {
	now := time.Now()
	items := []*models.Item{
		{ID: uuid.New(), UserID: suite.userID, Name: "Sample A", Code: "CODE-1000", Quantity: 4, LastInDate: &now},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM movement_logs`).
		WithArgs(suite.userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	suite.mock.ExpectExec(`DELETE FROM items`).
		WithArgs(suite.userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	suite.mock.ExpectExec(`INSERT INTO items`).
		WithArgs(items[0].ID, items[0].UserID, items[0].Name, items[0].Code, items[0].Quantity,
			items[0].Location, items[0].LastInDate, items[0].LastOutDate, items[0].ImageURL).
		WillReturnError(errors.New("connection reset"))
	suite.mock.ExpectRollback()

	err := suite.repo.SeedBatch(suite.context, suite.userID, items, nil)
	assert.Error(suite.T(), err)
}
