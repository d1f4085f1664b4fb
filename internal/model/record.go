package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Domain string

const (
	DomainBooks         Domain = "books"
	DomainConversations Domain = "conversations"
)

func (d Domain) Valid() bool {
	return d == DomainBooks || d == DomainConversations
}

const (
	RecordKindBook         = "book_chunk"
	RecordKindConversation = "conversation"
)

// BookChunk is one retrievable slice of an ingested book. Created once during
// import and never mutated afterwards.
type BookChunk struct {
	BookTitle    string    `json:"book_title"`
	ChapterTitle string    `json:"chapter_title,omitempty"`
	PageNumber   *int      `json:"page_number,omitempty"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
}

// ConversationRecord is the stored summary of one analyzed practice
// conversation. One record maps to exactly one stored vector.
type ConversationRecord struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Summary        string    `json:"summary"`
	Scenario       string    `json:"scenario,omitempty"`
	Difficulty     string    `json:"difficulty,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Record is the tagged union persisted next to each vector. Kind decides which
// pointer is set; decoding is a checked match, never a blind cast.
type Record struct {
	Kind         string              `json:"kind"`
	Book         *BookChunk          `json:"book,omitempty"`
	Conversation *ConversationRecord `json:"conversation,omitempty"`
}

func NewBookRecord(chunk BookChunk) Record {
	return Record{Kind: RecordKindBook, Book: &chunk}
}

func NewConversationRecord(rec ConversationRecord) Record {
	return Record{Kind: RecordKindConversation, Conversation: &rec}
}

func (r Record) Validate() error {
	switch r.Kind {
	case RecordKindBook:
		if r.Book == nil {
			return fmt.Errorf("record kind %s has no book payload", r.Kind)
		}
		if r.Book.Content == "" {
			return fmt.Errorf("book chunk content is empty")
		}
	case RecordKindConversation:
		if r.Conversation == nil {
			return fmt.Errorf("record kind %s has no conversation payload", r.Kind)
		}
		if r.Conversation.ConversationID == "" {
			return fmt.Errorf("conversation record has no conversation id")
		}
	default:
		return fmt.Errorf("unknown record kind: %q", r.Kind)
	}
	return nil
}

func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
