package core

import (
	"strings"
	"time"
)

const (
	TwinName          = "ProfileTwin"
	TwinUserAgent     = "ProfileTwin/0.1"
	TwinRepositoryURL = "https://github.com/sandevgo/profiletwin"
	TwinVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat-completion prompt message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one entry of a session's conversation history.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// WorkingText is Text in the working language. Empty when no translation was involved.
	WorkingText string `json:"workingText,omitempty"`
}

// Working returns the turn in the working language, falling back to Text.
func (t Turn) Working() string {
	if strings.TrimSpace(t.WorkingText) != "" {
		return t.WorkingText
	}
	return t.Text
}

// ContentFragment is a snapshot of a content-store record. The core never mutates it.
type ContentFragment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"content"`
	Source    string    `json:"source"`
	Type      string    `json:"chunk_type"`
	Priority  int       `json:"priority"`
	Keywords  []string  `json:"keywords,omitempty"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectivePriority returns the fragment priority, defaulting to 1.
func (f ContentFragment) EffectivePriority() int {
	if f.Priority <= 0 {
		return 1
	}
	return f.Priority
}

type ChangeOperation string

const (
	OpCreate ChangeOperation = "create"
	OpUpdate ChangeOperation = "update"
	OpDelete ChangeOperation = "delete"
)

func (o ChangeOperation) IsValid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// ChangeEvent is emitted by the content store on every mutation.
type ChangeEvent struct {
	Operation ChangeOperation `json:"operation"`
	Fragment  ContentFragment `json:"fragment"`
}

// VectorRecord is the vector-index mirror of an active fragment.
type VectorRecord struct {
	ID       string         `json:"id"`
	Data     string         `json:"data,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorMatch is a single nearest-neighbour hit returned by the index.
type VectorMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IndexInfo describes the vector index state.
type IndexInfo struct {
	Count int `json:"vectorCount"`
}

// RetrievalResult is transient and never persisted.
type RetrievalResult struct {
	Rank         int     `json:"rank"`
	Score        float64 `json:"score"`
	Semantic     float64 `json:"semantic"`
	LiteralBoost float64 `json:"literalBoost"`
	FragmentID   string  `json:"fragmentId"`
	Title        string  `json:"title"`
	Snippet      string  `json:"snippet"`
	Priority     int     `json:"priority"`
}

// ContextBlock is a prompt-ready fragment carrying its citation marker.
type ContextBlock struct {
	FragmentID string
	Title      string
	Text       string
	Score      float64
	Size       int
}

// Citation returns the marker used to reference the block in prompts.
func (b ContextBlock) Citation() string {
	return "[" + b.FragmentID + "]"
}

// VectorIDPrefix marks records mirrored from the content store.
const VectorIDPrefix = "cms_chunk_"

// VectorID maps a fragment id to its vector record id.
func VectorID(fragmentID string) string {
	return VectorIDPrefix + fragmentID
}

// FragmentIDFromVector reverses VectorID. ok is false for records not owned by the sync worker.
func FragmentIDFromVector(vectorID string) (string, bool) {
	id, ok := strings.CutPrefix(vectorID, VectorIDPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
