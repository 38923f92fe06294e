package retrieval

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Retriever runs one sub-query against the vector index.
type Retriever struct {
	index core.VectorIndex

	topK            int
	candidateFactor int
	semanticWeight  float64
	literalWeight   float64
	tieEpsilon      float64
	timeout         time.Duration
}

func NewRetriever(index core.VectorIndex, cfg *config.RAGConfig) *Retriever {
	r := &Retriever{
		index:           index,
		topK:            cfg.TopK,
		candidateFactor: cfg.CandidateFactor,
		semanticWeight:  cfg.SemanticWeight,
		literalWeight:   cfg.LiteralWeight,
		tieEpsilon:      cfg.TieEpsilon,
		timeout:         cfg.RetrievalTimeout,
	}
	if r.topK <= 0 {
		r.topK = 5
	}
	if r.candidateFactor < 1 {
		r.candidateFactor = 1
	}
	return r
}

// TopK is the number of results returned per sub-query.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns up to topK results ordered by score. No match is not an error.
func (r *Retriever) Retrieve(ctx context.Context, sq core.SubQuery, pattern core.Pattern) ([]core.RetrievalResult, error) {
	if strings.TrimSpace(sq.Text) == "" {
		return nil, nil
	}

	hybrid := pattern == core.PatternHybrid && len(sq.Terms) > 0

	limit := r.topK
	if sq.Limit > 0 {
		limit = sq.Limit
	}
	poolSize := limit
	if hybrid {
		// widen the pool so literal matches ranked low semantically can still surface
		poolSize = limit * r.candidateFactor
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	matches, err := r.index.Query(ctx, sq.Text, core.QueryOptions{TopK: poolSize, IncludeMetadata: true})
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	candidates := len(matches)

	if hybrid {
		literal, err := r.literalMatches(ctx, sq, limit)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("literal scan failed, using semantic matches only")
		}
		matches = append(matches, literal...)
	}

	// 1. Score
	best := make(map[string]core.RetrievalResult, len(matches))
	for _, m := range matches {
		res := toResult(m)
		res.Semantic = m.Score
		res.Score = m.Score
		if hybrid {
			res.LiteralBoost = literalBoost(m.Metadata, sq.Terms)
			res.Score = r.semanticWeight*m.Score + r.literalWeight*res.LiteralBoost
		}

		// 2. Deduplicate, keep the highest score
		if prev, ok := best[res.FragmentID]; ok && prev.Score >= res.Score {
			continue
		}
		best[res.FragmentID] = res
	}

	results := make([]core.RetrievalResult, 0, len(best))
	for _, res := range best {
		results = append(results, res)
	}

	// 3. Rank
	SortResults(results, r.tieEpsilon)
	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	log.FromCtx(ctx).Debug().
		Str("pattern", string(pattern)).
		Int("candidates", candidates).
		Int("literal", len(matches)-candidates).
		Int("results", len(results)).
		Msg("retrieval done")

	return results, nil
}

// literalMatches runs one metadata-filtered query per term, so fragments that contain
// the term verbatim are found even when they rank outside the semantic pool.
func (r *Retriever) literalMatches(ctx context.Context, sq core.SubQuery, limit int) ([]core.VectorMatch, error) {
	perTerm := make([][]core.VectorMatch, len(sq.Terms))

	g, ctx := errgroup.WithContext(ctx)
	for i, term := range sq.Terms {
		filter := LiteralFilter(term)
		if filter == "" {
			continue
		}
		g.Go(func() error {
			found, err := r.index.Query(ctx, sq.Text, core.QueryOptions{
				TopK:            limit,
				IncludeMetadata: true,
				Filter:          filter,
			})
			if err != nil {
				return fmt.Errorf("literal query %q: %w", term, err)
			}
			perTerm[i] = found
			return nil
		})
	}
	err := g.Wait()

	var out []core.VectorMatch
	for _, found := range perTerm {
		out = append(out, found...)
	}
	return out, err
}

// LiteralFilter builds a metadata filter matching fragments whose title or content
// contains term. Glob matching is case-sensitive, so the common casings are tried.
func LiteralFilter(term string) string {
	term = strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '*', '?', '[', ']', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(term))
	if term == "" {
		return ""
	}

	variants := []string{term}
	for _, v := range []string{strings.ToLower(term), capitalize(term)} {
		if !slices.Contains(variants, v) {
			variants = append(variants, v)
		}
	}

	clauses := make([]string, 0, len(variants)*2)
	for _, v := range variants {
		clauses = append(clauses,
			fmt.Sprintf("content GLOB '*%s*'", v),
			fmt.Sprintf("title GLOB '*%s*'", v),
		)
	}
	return strings.Join(clauses, " OR ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// SortResults orders by score descending. Results whose score is within epsilon of the
// first result of their group are ranked by priority, then score, then id.
func SortResults(results []core.RetrievalResult, epsilon float64) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].FragmentID < results[j].FragmentID
	})

	for start := 0; start < len(results); {
		end := start + 1
		for end < len(results) && results[start].Score-results[end].Score <= epsilon {
			end++
		}
		group := results[start:end]
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.FragmentID < b.FragmentID
		})
		start = end
	}
}

func toResult(m core.VectorMatch) core.RetrievalResult {
	res := core.RetrievalResult{
		FragmentID: metaString(m.Metadata, "chunk_id"),
		Title:      metaString(m.Metadata, "title"),
		Snippet:    metaString(m.Metadata, "content"),
		Priority:   metaInt(m.Metadata, "priority"),
	}
	if res.FragmentID == "" {
		if id, ok := core.FragmentIDFromVector(m.ID); ok {
			res.FragmentID = id
		} else {
			res.FragmentID = m.ID
		}
	}
	if res.Priority <= 0 {
		res.Priority = 1
	}
	return res
}

// literalBoost is the share of terms found verbatim in title, content or keywords.
func literalBoost(meta map[string]any, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	haystack := strings.ToLower(strings.Join([]string{
		metaString(meta, "title"),
		metaString(meta, "content"),
		strings.Join(metaStrings(meta, "keywords"), " "),
	}, "\n"))

	found := 0
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(haystack, t) {
			found++
		}
	}
	return float64(found) / float64(len(terms))
}

func metaString(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func metaStrings(meta map[string]any, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(v, ",")
	}
	return nil
}
