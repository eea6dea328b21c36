package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"zaikan/internal/models"
	"zaikan/internal/repositories"

	"github.com/google/uuid"
)

// CompletionClient is the text-completion collaborator. It either returns
// generated text or fails; the assistant never depends on anything beyond
// that.
type CompletionClient interface {
	Complete(ctx context.Context, instruction, question string) (string, error)
}

// Fixed user-facing strings, kept verbatim from the original deployment.
const (
	// FallbackAnswer replaces any collaborator failure.
	FallbackAnswer = "申し訳ありません。AIサービスの接続に失敗しました。時間をおいて再度お試しください。"
	// EmptyAnswer replaces a successful call that produced no text.
	EmptyAnswer = "申し訳ありません。回答を生成できませんでした。"

	noData = "データなし"
)

// AssistantService answers inventory questions grounded in a textual
// snapshot of the ledger and keeps the chat transcript.
type AssistantService interface {
	Ask(ctx context.Context, userID uuid.UUID, question string) (*models.ChatMessage, error)
	History(ctx context.Context, userID uuid.UUID) ([]*models.ChatMessage, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) error
}

type assistantService struct {
	itemRepo       repositories.ItemRepository
	logRepo        repositories.MovementLogRepository
	chatRepo       repositories.ChatRepository
	completer      CompletionClient
	recentLogCount int
}

func NewAssistantService(itemRepo repositories.ItemRepository, logRepo repositories.MovementLogRepository,
	chatRepo repositories.ChatRepository, completer CompletionClient, recentLogCount int) AssistantService {
	if recentLogCount <= 0 {
		recentLogCount = 10
	}
	return &assistantService{
		itemRepo:       itemRepo,
		logRepo:        logRepo,
		chatRepo:       chatRepo,
		completer:      completer,
		recentLogCount: recentLogCount,
	}
}

// Ask makes exactly one completion call. A collaborator failure degrades to
// the fixed fallback answer instead of surfacing an error; both the
// question and the answer are appended to the transcript either way.
func (s *assistantService) Ask(ctx context.Context, userID uuid.UUID, question string) (*models.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, models.NewValidationError("question", "question is required")
	}

	items, err := s.itemRepo.Search(ctx, userID, &models.ItemSearchFilter{Limit: 1000})
	if err != nil {
		return nil, err
	}
	entries, err := s.logRepo.ListRecent(ctx, userID, s.recentLogCount)
	if err != nil {
		return nil, err
	}

	instruction := BuildInstruction(items, entries, s.recentLogCount)

	answer, err := s.completer.Complete(ctx, instruction, question)
	if err != nil {
		log.Printf("completion call failed: %v", err)
		answer = FallbackAnswer
	} else if strings.TrimSpace(answer) == "" {
		answer = EmptyAnswer
	}

	now := time.Now()
	userMessage := &models.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      models.RoleUser,
		Text:      question,
		CreatedAt: now,
	}
	answerMessage := &models.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      models.RoleAssistant,
		Text:      answer,
		CreatedAt: now.Add(time.Millisecond),
	}

	if err := s.chatRepo.Append(ctx, userMessage); err != nil {
		return nil, err
	}
	if err := s.chatRepo.Append(ctx, answerMessage); err != nil {
		return nil, err
	}
	return answerMessage, nil
}

func (s *assistantService) History(ctx context.Context, userID uuid.UUID) ([]*models.ChatMessage, error) {
	return s.chatRepo.List(ctx, userID, 50)
}

func (s *assistantService) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	return s.chatRepo.Clear(ctx, userID)
}

// BuildInstruction renders the bounded ledger snapshot and the behavioral
// rules into the system instruction for the completion call. The wording
// matches the original prompt.
func BuildInstruction(items []*models.Item, entries []*models.MovementLog, recentLogCount int) string {
	var inventory strings.Builder
	for i, item := range items {
		if i > 0 {
			inventory.WriteString("\n")
		}
		fmt.Fprintf(&inventory, "- 商品名: %s (コード: %s), 在庫数: %d, 保管場所: %s, 最新入庫: %s, 最新出庫: %s",
			item.Name, item.Code, item.Quantity, item.Location,
			formatSnapshotDate(item.LastInDate), formatSnapshotDate(item.LastOutDate))
	}
	inventorySummary := inventory.String()
	if inventorySummary == "" {
		inventorySummary = noData
	}

	// Newest first, truncated to the configured count
	recent := make([]*models.MovementLog, len(entries))
	copy(recent, entries)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].OccurredAt.After(recent[j].OccurredAt) })
	if len(recent) > recentLogCount {
		recent = recent[:recentLogCount]
	}

	var logs strings.Builder
	for i, entry := range recent {
		if i > 0 {
			logs.WriteString("\n")
		}
		label := "入庫"
		if entry.Direction == models.DirectionOut {
			label = "出庫"
		}
		fmt.Fprintf(&logs, "- %s %s: %s (%d個)",
			entry.OccurredAt.Format("2006/01/02"), label, entry.ItemName, entry.Quantity)
	}
	logSummary := logs.String()
	if logSummary == "" {
		logSummary = noData
	}

	return fmt.Sprintf(`あなたは倉庫管理システムのAIアシスタントです。
ユーザーは倉庫の作業員または管理者です。
以下の「現在の在庫データ」と「最近の入出庫履歴」をもとに、ユーザーの質問に日本語で丁寧に答えてください。

【現在の在庫データ】
%s

【最近の入出庫履歴】
%s

回答のルール:
1. 常に丁寧な「です・ます」調を使ってください。
2. 具体的な数字（在庫数など）を聞かれた場合は、提供されたデータに基づいて正確に答えてください。
3. データにない商品について聞かれた場合は、「その商品のデータは見当たりません」と正直に答えてください。
4. 在庫不足（0個）の商品がある場合は、注意喚起をしてください。
5. JSON形式ではなく、自然な会話文で返答してください。
`, inventorySummary, logSummary)
}

func formatSnapshotDate(t *time.Time) string {
	if t == nil {
		return "なし"
	}
	return t.Format("2006/01/02")
}
