package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/ai"
	"github.com/verba-ai/verba/internal/ingest"
	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errs"
	"github.com/verba-ai/verba/internal/rag"
	"github.com/verba-ai/verba/internal/vectorstore"
)

const summaryPrompt = `You are an assistant reviewing a language practice conversation.
Summarize the transcript below into one concise paragraph (2-4 sentences): the topics discussed, vocabulary themes, and how the conversation developed.
- Use the same language as the transcript.
- Output ONLY the summary text.

TRANSCRIPT:
%s`

type AnalyzeRequest struct {
	ConversationID string
	UserID         string
	Scenario       string
	Difficulty     string
	Messages       []model.Message
}

type AnalyzeResult struct {
	ConversationID string         `json:"conversation_id"`
	Summary        string         `json:"summary"`
	Sources        []model.Source `json:"sources"`
}

// AnalysisService summarizes a finished conversation, stores the summary in
// the conversations index, and builds a grounding report that merges book
// passages with the user's own earlier conversations.
type AnalysisService struct {
	generator  ai.IGenerator
	embedder   ai.IEmbedder
	manager    *vectorstore.Manager
	retriever  *rag.Retriever
	maxSources int
	timeout    time.Duration
}

func NewAnalysisService(
	generator ai.IGenerator,
	embedder ai.IEmbedder,
	manager *vectorstore.Manager,
	retriever *rag.Retriever,
	maxSources int,
	timeout time.Duration,
) *AnalysisService {
	if maxSources <= 0 {
		maxSources = 5
	}
	return &AnalysisService{
		generator:  generator,
		embedder:   embedder,
		manager:    manager,
		retriever:  retriever,
		maxSources: maxSources,
		timeout:    timeout,
	}
}

func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if req.ConversationID == "" || req.UserID == "" {
		return nil, fmt.Errorf("%w: conversation_id and user_id are required", errs.ErrInvalid)
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("%w: transcript is empty", errs.ErrInvalid)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("conversation_id", req.ConversationID),
		zap.String("user_id", req.UserID),
	)

	summary, err := s.generator.Generate(ctx, fmt.Sprintf(summaryPrompt, renderTranscript(req.Messages)))
	if err != nil {
		return nil, fmt.Errorf("summarize conversation: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, fmt.Errorf("empty summary: %w", errs.ErrProvider)
	}

	vector, err := s.embedder.Embed(ctx, summary, ingest.EmbedTaskDocument)
	if err != nil {
		return nil, fmt.Errorf("embed summary: %w", err)
	}
	idx, err := s.manager.Open(model.DomainConversations)
	if err != nil {
		return nil, err
	}
	rec := model.NewConversationRecord(model.ConversationRecord{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Summary:        summary,
		Scenario:       req.Scenario,
		Difficulty:     req.Difficulty,
		Timestamp:      time.Now(),
	})
	if err := idx.Insert(ctx, vector, rec); err != nil {
		return nil, fmt.Errorf("store conversation summary: %w", err)
	}
	logger.Info("conversation indexed", zap.Int("summary_chars", len(summary)))

	sources, err := s.groundingSources(ctx, req.UserID, summary)
	if err != nil {
		// The record is already stored; a failed grounding lookup should not
		// undo the analysis.
		logger.Warn("grounding lookup failed", zap.Error(err))
		sources = []model.Source{}
	}
	return &AnalyzeResult{
		ConversationID: req.ConversationID,
		Summary:        summary,
		Sources:        sources,
	}, nil
}

// groundingSources merges book matches with the user's past conversations,
// deduplicated by source identity, best score wins.
func (s *AnalysisService) groundingSources(ctx context.Context, userID, summary string) ([]model.Source, error) {
	bookHits, err := s.retriever.RetrieveDiverse(ctx, summary, s.maxSources)
	if err != nil {
		return nil, err
	}
	bookSources := make([]model.Source, 0, len(bookHits))
	for _, hit := range bookHits {
		bookSources = append(bookSources, model.Source{
			BookTitle:    hit.Chunk.BookTitle,
			ChapterTitle: hit.Chunk.ChapterTitle,
			PageNumber:   hit.Chunk.PageNumber,
			Score:        hit.Score,
		})
	}

	vector, err := s.embedder.Embed(ctx, summary, ingest.EmbedTaskQuery)
	if err != nil {
		return nil, err
	}
	idx, err := s.manager.Open(model.DomainConversations)
	if err != nil {
		return nil, err
	}
	count, err := idx.Count(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := idx.Query(ctx, vector, int(count))
	if err != nil {
		return nil, err
	}
	convSources := make([]model.Source, 0, len(raw))
	for _, res := range raw {
		if res.Record.Conversation == nil || res.Record.Conversation.UserID != userID {
			continue
		}
		convSources = append(convSources, model.SourceOf(res))
	}
	return rag.MergeSources(s.maxSources, bookSources, convSources), nil
}

func renderTranscript(messages []model.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		role := "User"
		if msg.Role == model.RoleAssistant {
			role = "Partner"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n")
	}
	return sb.String()
}
