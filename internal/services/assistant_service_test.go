package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"zaikan/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Append(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]*models.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// stubCompleter records the instruction it was handed and answers with a
// fixed string or error.
type stubCompleter struct {
	instruction string
	question    string
	answer      string
	err         error
}

func (s *stubCompleter) Complete(_ context.Context, instruction, question string) (string, error) {
	s.instruction = instruction
	s.question = question
	return s.answer, s.err
}

type AssistantServiceTestSuite struct {
	suite.Suite
	mockItemRepo *MockItemRepository
	mockLogRepo  *MockMovementLogRepository
	mockChatRepo *MockChatRepository
	completer    *stubCompleter
	service      AssistantService
	userID       uuid.UUID
}

func (suite *AssistantServiceTestSuite) SetupTest() {
	suite.mockItemRepo = &MockItemRepository{}
	suite.mockLogRepo = &MockMovementLogRepository{}
	suite.mockChatRepo = &MockChatRepository{}
	suite.completer = &stubCompleter{answer: "在庫は5個です。"}
	suite.service = NewAssistantService(suite.mockItemRepo, suite.mockLogRepo, suite.mockChatRepo, suite.completer, 10)
	suite.userID = uuid.New()
}

func (suite *AssistantServiceTestSuite) TearDownTest() {
	suite.mockItemRepo.AssertExpectations(suite.T())
	suite.mockLogRepo.AssertExpectations(suite.T())
	suite.mockChatRepo.AssertExpectations(suite.T())
}

func TestAssistantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssistantServiceTestSuite))
}

func (suite *AssistantServiceTestSuite) expectSnapshot(items []*models.Item, entries []*models.MovementLog) {
	suite.mockItemRepo.On("Search", mock.Anything, suite.userID, &models.ItemSearchFilter{Limit: 1000}).
		Return(items, nil).Once()
	suite.mockLogRepo.On("ListRecent", mock.Anything, suite.userID, 10).
		Return(entries, nil).Once()
}

func (suite *AssistantServiceTestSuite) TestAsk_GroundsInstructionInSnapshot() {
	lastIn := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
	items := []*models.Item{
		{Name: "Widget", Code: "W-100", Quantity: 5, Location: "Shelf A", LastInDate: &lastIn},
	}
	suite.expectSnapshot(items, []*models.MovementLog{})
	suite.mockChatRepo.On("Append", mock.Anything, mock.Anything).Return(nil).Twice()

	answer, err := suite.service.Ask(context.Background(), suite.userID, "Widgetの在庫は？")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "在庫は5個です。", answer.Text)
	assert.Equal(suite.T(), models.RoleAssistant, answer.Role)

	// The snapshot handed to the completion call names the item and its
	// quantity, so answers can only come from real data.
	assert.Contains(suite.T(), suite.completer.instruction, "Widget")
	assert.Contains(suite.T(), suite.completer.instruction, "在庫数: 5")
	assert.Contains(suite.T(), suite.completer.instruction, "コード: W-100")
	assert.Contains(suite.T(), suite.completer.instruction, "2026/08/20")
	assert.Equal(suite.T(), "Widgetの在庫は？", suite.completer.question)
}

func (suite *AssistantServiceTestSuite) TestAsk_EmptyQuestion() {
	_, err := suite.service.Ask(context.Background(), suite.userID, "   ")

	ve, ok := models.AsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "question", ve.Field)
}

func (suite *AssistantServiceTestSuite) TestAsk_FallbackOnCompleterFailure() {
	suite.completer.err = errors.New("dial tcp: connection refused")
	suite.expectSnapshot([]*models.Item{}, []*models.MovementLog{})

	var appended []*models.ChatMessage
	suite.mockChatRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		appended = append(appended, args.Get(1).(*models.ChatMessage))
	}).Return(nil).Twice()

	answer, err := suite.service.Ask(context.Background(), suite.userID, "在庫状況は？")

	// The failure never surfaces: the caller gets the fixed apology.
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), FallbackAnswer, answer.Text)

	// Both turns still land in the transcript
	assert.Len(suite.T(), appended, 2)
	assert.Equal(suite.T(), models.RoleUser, appended[0].Role)
	assert.Equal(suite.T(), "在庫状況は？", appended[0].Text)
	assert.Equal(suite.T(), models.RoleAssistant, appended[1].Role)
	assert.True(suite.T(), appended[1].CreatedAt.After(appended[0].CreatedAt))
}

func (suite *AssistantServiceTestSuite) TestAsk_EmptyCompletionGetsPlaceholder() {
	suite.completer.answer = "   "
	suite.expectSnapshot([]*models.Item{}, []*models.MovementLog{})
	suite.mockChatRepo.On("Append", mock.Anything, mock.Anything).Return(nil).Twice()

	answer, err := suite.service.Ask(context.Background(), suite.userID, "こんにちは")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), EmptyAnswer, answer.Text)
}

func (suite *AssistantServiceTestSuite) TestHistory() {
	messages := []*models.ChatMessage{
		{ID: uuid.New(), Role: models.RoleUser, Text: "在庫は？"},
		{ID: uuid.New(), Role: models.RoleAssistant, Text: "5個です。"},
	}
	suite.mockChatRepo.On("List", mock.Anything, suite.userID, 50).Return(messages, nil).Once()

	got, err := suite.service.History(context.Background(), suite.userID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), messages, got)
}

func (suite *AssistantServiceTestSuite) TestClearHistory() {
	suite.mockChatRepo.On("Clear", mock.Anything, suite.userID).Return(nil).Once()

	err := suite.service.ClearHistory(context.Background(), suite.userID)

	assert.NoError(suite.T(), err)
}

func TestBuildInstruction_EmptyLedger(t *testing.T) {
	instruction := BuildInstruction(nil, nil, 10)

	assert.Contains(t, instruction, "【現在の在庫データ】\nデータなし")
	assert.Contains(t, instruction, "【最近の入出庫履歴】\nデータなし")
}

func TestBuildInstruction_NilDatesRenderAsNone(t *testing.T) {
	items := []*models.Item{{Name: "Widget", Code: "W-100", Quantity: 0, Location: "Shelf A"}}

	instruction := BuildInstruction(items, nil, 10)

	assert.Contains(t, instruction, "最新入庫: なし")
	assert.Contains(t, instruction, "最新出庫: なし")
}

func TestBuildInstruction_LogsNewestFirstAndBounded(t *testing.T) {
	base := time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC)
	var entries []*models.MovementLog
	for i := 0; i < 12; i++ {
		entries = append(entries, &models.MovementLog{
			ItemName:   "Widget",
			Direction:  models.DirectionIn,
			Quantity:   i + 1,
			OccurredAt: base.AddDate(0, 0, i),
		})
	}

	instruction := BuildInstruction(nil, entries, 10)

	// Only the 10 newest entries survive, newest first
	assert.NotContains(t, instruction, "2026/08/01 入庫")
	assert.NotContains(t, instruction, "2026/08/02 入庫")
	newest := strings.Index(instruction, "2026/08/12")
	oldest := strings.Index(instruction, "2026/08/03")
	assert.Greater(t, oldest, newest)
	assert.Contains(t, instruction, "- 2026/08/12 入庫: Widget (12個)")
}

func TestBuildInstruction_DirectionLabels(t *testing.T) {
	day := time.Date(2026, time.August, 5, 9, 0, 0, 0, time.UTC)
	entries := []*models.MovementLog{
		{ItemName: "Widget", Direction: models.DirectionOut, Quantity: 2, OccurredAt: day},
		{ItemName: "Widget", Direction: models.DirectionIn, Quantity: 3, OccurredAt: day.Add(-time.Hour)},
	}

	instruction := BuildInstruction(nil, entries, 10)

	assert.Contains(t, instruction, "出庫: Widget (2個)")
	assert.Contains(t, instruction, "入庫: Widget (3個)")
}
