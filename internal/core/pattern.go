package core

// Pattern is the retrieval strategy chosen for a question.
type Pattern string

const (
	PatternDirect   Pattern = "direct"
	PatternHybrid   Pattern = "hybrid"
	PatternMultiHop Pattern = "multi_hop"
)

// SubQuery is one independently retrievable part of a question.
type SubQuery struct {
	Text  string
	Terms []string // literal terms for hybrid matching
	Limit int      // overrides the retriever's topK when positive
}

// Route is the outcome of classifying a question.
type Route struct {
	Pattern    Pattern
	SubQueries []SubQuery
}
