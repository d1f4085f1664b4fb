package model

import "fmt"

// SearchResult pairs a stored record with its similarity score. Higher score
// means more similar. Produced fresh per query, never persisted.
type SearchResult struct {
	Record Record  `json:"record"`
	Score  float32 `json:"score"`
}

// BookResult is the typed view of a SearchResult from the books domain.
type BookResult struct {
	Chunk BookChunk `json:"chunk"`
	Score float32   `json:"score"`
}

// Source is the caller-visible attribution entry for one retrieval hit.
type Source struct {
	BookTitle      string  `json:"book_title,omitempty"`
	ChapterTitle   string  `json:"chapter_title,omitempty"`
	PageNumber     *int    `json:"page_number,omitempty"`
	ConversationID string  `json:"conversation_id,omitempty"`
	Score          float32 `json:"score"`
}

// Key returns the logical identity used for attribution dedup: book title +
// chapter + page for book hits, the conversation id for conversation hits.
func (s Source) Key() string {
	if s.ConversationID != "" {
		return "conv:" + s.ConversationID
	}
	page := -1
	if s.PageNumber != nil {
		page = *s.PageNumber
	}
	return fmt.Sprintf("book:%s|%s|%d", s.BookTitle, s.ChapterTitle, page)
}

// SourceOf builds the attribution entry for one search result.
func SourceOf(res SearchResult) Source {
	src := Source{Score: res.Score}
	switch res.Record.Kind {
	case RecordKindBook:
		if res.Record.Book != nil {
			src.BookTitle = res.Record.Book.BookTitle
			src.ChapterTitle = res.Record.Book.ChapterTitle
			src.PageNumber = res.Record.Book.PageNumber
		}
	case RecordKindConversation:
		if res.Record.Conversation != nil {
			src.ConversationID = res.Record.Conversation.ConversationID
		}
	}
	return src
}
