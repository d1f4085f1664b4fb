package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/ai"
	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errs"
	"github.com/verba-ai/verba/internal/rag"
)

// defaultPracticePrompt is used when the caller supplies no scenario prompt.
const defaultPracticePrompt = `You are a friendly conversation partner helping the user practice their speaking skills.
Keep replies natural and conversational, match the user's language, and gently steer the dialogue forward.`

type ChatTurn struct {
	SystemPrompt string
	History      []model.Message
	Message      string
}

type ChatReply struct {
	Reply    string         `json:"reply"`
	Sources  []model.Source `json:"sources"`
	Grounded bool           `json:"grounded"`
}

// ChatService runs one practice turn: retrieve supporting book passages,
// fold them into the system prompt, and call the chat backend. Losing
// retrieval must never block the conversation, so RAG failures degrade to the
// ungrounded prompt instead of failing the turn.
type ChatService struct {
	retriever *rag.Retriever
	formatter *rag.Formatter
	chatter   ai.IChatter
	topK      int
	timeout   time.Duration
}

func NewChatService(retriever *rag.Retriever, formatter *rag.Formatter, chatter ai.IChatter, topK int, timeout time.Duration) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{
		retriever: retriever,
		formatter: formatter,
		chatter:   chatter,
		topK:      topK,
		timeout:   timeout,
	}
}

func (s *ChatService) Turn(ctx context.Context, turn ChatTurn) (*ChatReply, error) {
	if strings.TrimSpace(turn.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", errs.ErrInvalid)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	logger := logutil.GetLogger(ctx)

	basePrompt := turn.SystemPrompt
	if strings.TrimSpace(basePrompt) == "" {
		basePrompt = defaultPracticePrompt
	}

	reply := &ChatReply{Sources: []model.Source{}}
	systemPrompt := basePrompt
	results, err := s.retriever.RetrieveDiverse(ctx, turn.Message, s.topK)
	if err != nil {
		// Degrade, don't fail: a chat turn without grounding is still a chat
		// turn.
		logger.Warn("retrieval failed, continuing ungrounded", zap.Error(err))
	} else if len(results) > 0 {
		rc := s.formatter.BuildContext(results)
		systemPrompt = rag.Augment(basePrompt, rc.Text)
		reply.Sources = rc.Sources
		reply.Grounded = rc.Included > 0
		logger.Debug("chat turn grounded",
			zap.Int("retrieved", len(results)),
			zap.Int("included", rc.Included),
		)
	}

	text, err := s.chatter.Chat(ctx, systemPrompt, turn.History, turn.Message)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty chat response: %w", errs.ErrProvider)
	}
	reply.Reply = text
	return reply, nil
}
