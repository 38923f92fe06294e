package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.RAGConfig {
	return &config.RAGConfig{
		TopK:             3,
		SemanticWeight:   0.7,
		LiteralWeight:    0.3,
		TieEpsilon:       0.01,
		CandidateFactor:  3,
		RetrievalTimeout: time.Second,
	}
}

func match(id string, score float64, title, content string, priority int) core.VectorMatch {
	return core.VectorMatch{
		ID:    core.VectorID(id),
		Score: score,
		Metadata: map[string]any{
			"chunk_id": id,
			"title":    title,
			"content":  content,
			"priority": float64(priority),
		},
	}
}

func fixedIndex(matches ...core.VectorMatch) *test.MemoryIndex {
	idx := test.NewMemoryIndex()
	idx.QueryFunc = func(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error) {
		if opts.TopK < len(matches) {
			return matches[:opts.TopK], nil
		}
		return matches, nil
	}
	return idx
}

func ids(results []core.RetrievalResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.FragmentID
	}
	return out
}

func TestRetriever_Direct(t *testing.T) {
	idx := fixedIndex(
		match("1", 0.9, "Education", "MSc in computer science", 1),
		match("2", 0.8, "Work", "Backend engineer", 1),
		match("3", 0.7, "Hobbies", "Climbing", 1),
		match("4", 0.6, "Misc", "Other", 1),
	)
	r := NewRetriever(idx, testConfig())

	results, err := r.Retrieve(context.Background(), core.SubQuery{Text: "education"}, core.PatternDirect)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, ids(results))
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 0.9, results[0].Score)
	assert.Zero(t, results[0].LiteralBoost)
	assert.Equal(t, "MSc in computer science", results[0].Snippet)
}

func TestRetriever_HybridBoostsLiteralMatches(t *testing.T) {
	idx := test.NewMemoryIndex()
	r := NewRetriever(idx, testConfig())

	var gotTopK int
	idx.QueryFunc = func(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error) {
		if opts.Filter == "" {
			gotTopK = opts.TopK
		}
		assert.True(t, opts.IncludeMetadata)
		return []core.VectorMatch{
			match("1", 0.80, "Frontend", "React and CSS", 1),
			match("2", 0.78, "Infra", "Deployed services on Kubernetes", 1),
			match("3", 0.75, "Data", "Spark pipelines", 1),
			match("4", 0.50, "Platform", "Kubernetes operators in Go", 1),
		}, nil
	}

	results, err := r.Retrieve(context.Background(),
		core.SubQuery{Text: "kubernetes experience", Terms: []string{"kubernetes"}}, core.PatternHybrid)
	require.NoError(t, err)

	assert.Equal(t, 9, gotTopK)
	require.Len(t, results, 3)
	// 0.7*0.78+0.3 = 0.846, 0.7*0.5+0.3 = 0.65, 0.7*0.8 = 0.56
	assert.Equal(t, []string{"2", "4", "1"}, ids(results))
	assert.InDelta(t, 0.846, results[0].Score, 1e-9)
	assert.Equal(t, 1.0, results[0].LiteralBoost)
	assert.Equal(t, 0.78, results[0].Semantic)
}

func TestRetriever_HybridMatchesKeywords(t *testing.T) {
	m := match("7", 0.5, "Side project", "A chat bot", 1)
	m.Metadata["keywords"] = []any{"Telegram", "golang"}
	r := NewRetriever(fixedIndex(m), testConfig())

	results, err := r.Retrieve(context.Background(),
		core.SubQuery{Text: "telegram bot", Terms: []string{"telegram", "rust"}}, core.PatternHybrid)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.5, results[0].LiteralBoost)
}

func TestRetriever_DeduplicatesByFragment(t *testing.T) {
	dup := match("1", 0.6, "Work", "Backend engineer", 1)
	dup.ID = "legacy-1"
	r := NewRetriever(fixedIndex(
		dup,
		match("1", 0.9, "Work", "Backend engineer", 1),
		match("2", 0.5, "Hobbies", "Climbing", 1),
	), testConfig())

	results, err := r.Retrieve(context.Background(), core.SubQuery{Text: "work"}, core.PatternDirect)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(results))
	assert.Equal(t, 0.9, results[0].Score)
}

func TestRetriever_TieBreaksByPriority(t *testing.T) {
	r := NewRetriever(fixedIndex(
		match("low", 0.805, "A", "a", 1),
		match("high", 0.800, "B", "b", 5),
		match("far", 0.700, "C", "c", 9),
	), testConfig())

	results, err := r.Retrieve(context.Background(), core.SubQuery{Text: "x"}, core.PatternDirect)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low", "far"}, ids(results))
}

func TestRetriever_FragmentIDFromVectorID(t *testing.T) {
	r := NewRetriever(fixedIndex(core.VectorMatch{ID: core.VectorID("42"), Score: 0.4}), testConfig())

	results, err := r.Retrieve(context.Background(), core.SubQuery{Text: "x"}, core.PatternDirect)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "42", results[0].FragmentID)
	assert.Equal(t, 1, results[0].Priority)
}

func TestRetriever_EmptyIsNotAnError(t *testing.T) {
	r := NewRetriever(fixedIndex(), testConfig())

	results, err := r.Retrieve(context.Background(), core.SubQuery{Text: "anything"}, core.PatternDirect)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetriever_PropagatesIndexErrors(t *testing.T) {
	idx := test.NewMemoryIndex()
	idx.QueryFunc = func(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error) {
		return nil, core.NewUpstreamError("vector", 503, errors.New("busy"))
	}
	r := NewRetriever(idx, testConfig())

	_, err := r.Retrieve(context.Background(), core.SubQuery{Text: "x"}, core.PatternDirect)
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
}

func TestRetriever_Timeout(t *testing.T) {
	idx := test.NewMemoryIndex()
	idx.QueryFunc = func(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	cfg := testConfig()
	cfg.RetrievalTimeout = 20 * time.Millisecond
	r := NewRetriever(idx, cfg)

	_, err := r.Retrieve(context.Background(), core.SubQuery{Text: "x"}, core.PatternDirect)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, core.IsTransient(err))
}

func TestRetriever_HybridFindsLiteralOutsideSemanticPool(t *testing.T) {
	idx := test.NewMemoryIndex()
	ctx := context.Background()
	for i := range 20 {
		id := fmt.Sprintf("n%02d", i)
		require.NoError(t, idx.Upsert(ctx, core.VectorRecord{
			ID:   core.VectorID(id),
			Data: "experience with Jenkins and Ansible tools",
			Metadata: map[string]any{
				"chunk_id": id,
				"title":    "Tooling",
				"content":  "experience with Jenkins and Ansible tools",
			},
		}))
	}
	require.NoError(t, idx.Upsert(ctx, core.VectorRecord{
		ID:   core.VectorID("terraform"),
		Data: "Terraform modules for AWS",
		Metadata: map[string]any{
			"chunk_id": "terraform",
			"title":    "Infrastructure",
			"content":  "Terraform modules for AWS",
		},
	}))
	r := NewRetriever(idx, testConfig())

	results, err := r.Retrieve(ctx,
		core.SubQuery{Text: "experience with Terraform", Terms: []string{"Terraform"}}, core.PatternHybrid)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "terraform", results[0].FragmentID)
	assert.Equal(t, 1.0, results[0].LiteralBoost)
	assert.Contains(t, idx.Filters(), LiteralFilter("Terraform"))
}

func TestRetriever_LiteralScanFailureKeepsSemanticHits(t *testing.T) {
	idx := test.NewMemoryIndex()
	idx.QueryFunc = func(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error) {
		if opts.Filter != "" {
			return nil, core.NewUpstreamError("vector", 400, errors.New("bad filter"))
		}
		return []core.VectorMatch{match("1", 0.8, "Infra", "Kubernetes", 1)}, nil
	}
	r := NewRetriever(idx, testConfig())

	results, err := r.Retrieve(context.Background(),
		core.SubQuery{Text: "kubernetes", Terms: []string{"Kubernetes"}}, core.PatternHybrid)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(results))
}

func TestRetriever_LimitOverridesTopK(t *testing.T) {
	var matches []core.VectorMatch
	for i := range 12 {
		matches = append(matches, match(fmt.Sprintf("f%02d", i), 0.9-float64(i)*0.05, "T", "c", 1))
	}
	r := NewRetriever(fixedIndex(matches...), testConfig())

	results, err := r.Retrieve(context.Background(), core.SubQuery{Text: "x", Limit: 10}, core.PatternDirect)
	require.NoError(t, err)
	assert.Len(t, results, 10)
	assert.Equal(t, 10, results[9].Rank)
}

func TestLiteralFilter(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{
			name: "mixed case adds lower and capitalized variants",
			term: "Terraform",
			want: "content GLOB '*Terraform*' OR title GLOB '*Terraform*' OR " +
				"content GLOB '*terraform*' OR title GLOB '*terraform*'",
		},
		{
			name: "lower case adds capitalized variant",
			term: "go",
			want: "content GLOB '*go*' OR title GLOB '*go*' OR content GLOB '*Go*' OR title GLOB '*Go*'",
		},
		{
			name: "quotes and glob characters are dropped",
			term: "it's*",
			want: "content GLOB '*its*' OR title GLOB '*its*' OR content GLOB '*Its*' OR title GLOB '*Its*'",
		},
		{name: "empty", term: "  ", want: ""},
		{name: "only special characters", term: "'*?", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LiteralFilter(tt.term))
		})
	}
}

func TestSortResults_IndependentOfInputOrder(t *testing.T) {
	a := core.RetrievalResult{FragmentID: "a", Score: 0.800, Priority: 1}
	b := core.RetrievalResult{FragmentID: "b", Score: 0.795, Priority: 2}
	c := core.RetrievalResult{FragmentID: "c", Score: 0.789, Priority: 9}
	d := core.RetrievalResult{FragmentID: "d", Score: 0.500, Priority: 1}

	permutations := [][]core.RetrievalResult{
		{a, b, c, d}, {a, c, b, d}, {b, a, c, d}, {b, c, a, d},
		{c, a, b, d}, {c, b, a, d}, {d, c, b, a}, {d, a, c, b},
	}
	for _, in := range permutations {
		results := append([]core.RetrievalResult(nil), in...)
		SortResults(results, 0.01)
		// a leads its group, b is within epsilon of a, c is not
		assert.Equal(t, []string{"b", "a", "c", "d"}, ids(results))
	}
}
