package core

import "context"

type CompletionRequest struct {
	Messages    []Message
	Model       string
	MaxTokens   int
	Temperature float64
}

type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type QueryOptions struct {
	TopK            int
	IncludeMetadata bool
	Filter          string
}

// VectorIndex is the external vector service. Embeddings are computed by the service.
type VectorIndex interface {
	Query(ctx context.Context, text string, opts QueryOptions) ([]VectorMatch, error)
	Upsert(ctx context.Context, record VectorRecord) error
	Delete(ctx context.Context, id string) error
	Info(ctx context.Context) (IndexInfo, error)
}

// VectorLister pages through stored records. Used by full resync only.
type VectorLister interface {
	Range(ctx context.Context, cursor string, limit int) ([]VectorRecord, string, error)
}

// ContentSource lists the active fragments held by the content store.
type ContentSource interface {
	ListActive(ctx context.Context) ([]ContentFragment, error)
}

type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

type Classifier interface {
	Classify(text string, history []Turn) Route
}
