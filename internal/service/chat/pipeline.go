package chat

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/answer"
	"github.com/sandevgo/profiletwin/internal/service/assembler"
	"github.com/sandevgo/profiletwin/internal/service/language"
	"github.com/sandevgo/profiletwin/internal/service/router"
	"github.com/sandevgo/profiletwin/pkg/log"
	"golang.org/x/sync/errgroup"
)

const maxMessageRunes = 2000

type Retriever interface {
	Retrieve(ctx context.Context, sq core.SubQuery, pattern core.Pattern) ([]core.RetrievalResult, error)
}

// Pipeline answers one message end to end: normalize, route, retrieve, assemble,
// generate, back-translate.
type Pipeline struct {
	normalizer *language.Normalizer
	classifier core.Classifier
	retriever  Retriever
	assembler  *assembler.Assembler
	generator  *answer.Generator
	sessions   core.SessionStore
	transcript core.TranscriptRepository
	budget     int
}

func NewPipeline(
	normalizer *language.Normalizer,
	classifier core.Classifier,
	retriever Retriever,
	assembler *assembler.Assembler,
	generator *answer.Generator,
	sessions core.SessionStore,
	transcript core.TranscriptRepository,
	budget int,
) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		classifier: classifier,
		retriever:  retriever,
		assembler:  assembler,
		generator:  generator,
		sessions:   sessions,
		transcript: transcript,
		budget:     budget,
	}
}

// Chat returns an error only for invalid requests. Upstream failures end in a degraded
// answer instead.
func (p *Pipeline) Chat(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, core.Validationf("message is required")
	}
	if utf8.RuneCountInString(message) > maxMessageRunes {
		return nil, core.Validationf("message exceeds %d characters", maxMessageRunes)
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = log.WithFields(ctx, "session_id", sessionID)
	logger := log.FromCtx(ctx)

	unlock := p.sessions.Lock(sessionID)
	defer unlock()

	// 1. History
	p.sessions.Seed(sessionID, sanitizeHistory(req.History))
	history, _, _ := p.sessions.History(sessionID)

	// 2. Normalize
	norm := p.normalizer.Normalize(ctx, message)

	// 3. Route
	route := router.Direct(norm.WorkingText)
	if req.EnhancedMode == nil || *req.EnhancedMode {
		route = p.classifier.Classify(norm.WorkingText, history)
	}
	logger.Debug().
		Str("pattern", string(route.Pattern)).
		Int("sub_queries", len(route.SubQueries)).
		Str("language", norm.Detected).
		Msg("question routed")

	// 4. Retrieve
	results, failed := p.retrieveAll(ctx, route)
	found := countFragments(results)

	// 5. Generate
	var (
		gen     answer.Result
		sources []string
	)
	if failed > 0 && failed == len(route.SubQueries) {
		logger.Error().Msg("retrieval failed for every sub-query, using fallback")
		gen = answer.Result{Text: answer.FallbackAnswer, Degraded: true}
	} else {
		blocks := p.assembler.Assemble(results, p.budget)
		for _, b := range blocks {
			sources = append(sources, b.FragmentID)
		}
		gen = p.generator.Generate(ctx, blocks, history, norm.WorkingText, norm.Detected)
		gen.Degraded = gen.Degraded || failed > 0
	}

	// 6. Back-translate
	final, backTranslated := p.normalizer.Denormalize(ctx, gen.Text, norm.Detected)

	// 7. Record
	now := time.Now().UTC()
	question := core.Turn{Role: core.RoleUser, Text: message, Timestamp: now}
	reply := core.Turn{Role: core.RoleAssistant, Text: final, Timestamp: now}
	if norm.WorkingText != message {
		question.WorkingText = norm.WorkingText
	}
	if gen.Text != final {
		reply.WorkingText = gen.Text
	}
	p.sessions.Append(sessionID, norm.Detected, question, reply)

	if p.transcript != nil {
		err := p.transcript.AddExchange(context.WithoutCancel(ctx), core.Exchange{
			SessionID:    sessionID,
			Language:     norm.Detected,
			Pattern:      route.Pattern,
			ResultsFound: found,
			Degraded:     gen.Degraded,
			Question:     question,
			Answer:       reply,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to save transcript")
		}
	}

	logger.Info().
		Str("pattern", string(route.Pattern)).
		Int("results", found).
		Bool("degraded", gen.Degraded).
		Msg("question answered")

	return &Response{
		Response: final,
		Metadata: Metadata{
			RAGPattern: route.Pattern,
			Language: LanguageInfo{
				Detected:        norm.Detected,
				TranslationUsed: norm.TranslationUsed || backTranslated,
			},
			ResultsFound: found,
			SessionID:    sessionID,
			Degraded:     gen.Degraded,
			Sources:      sources,
		},
	}, nil
}

// Search runs routing and retrieval only, for callers that want raw fragments.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]core.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, core.Validationf("query is required")
	}

	norm := p.normalizer.Normalize(ctx, query)
	route := p.classifier.Classify(norm.WorkingText, nil)
	if topK > 0 {
		for i := range route.SubQueries {
			route.SubQueries[i].Limit = topK
		}
	}

	results, failed := p.retrieveAll(ctx, route)
	if failed > 0 && failed == len(route.SubQueries) {
		return nil, core.ErrUpstreamUnavailable
	}

	merged := p.assembler.Merge(results)
	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	for i := range merged {
		merged[i].Rank = i + 1
	}
	return merged, nil
}

// retrieveAll queries every sub-query concurrently. Failed sub-queries leave an empty slot.
func (p *Pipeline) retrieveAll(ctx context.Context, route core.Route) ([][]core.RetrievalResult, int) {
	results := make([][]core.RetrievalResult, len(route.SubQueries))

	var (
		mu     sync.Mutex
		failed int
	)
	var g errgroup.Group
	for i, sq := range route.SubQueries {
		g.Go(func() error {
			res, err := p.retriever.Retrieve(ctx, sq, route.Pattern)
			if err != nil {
				log.FromCtx(ctx).Warn().Err(err).Str("sub_query", sq.Text).Msg("retrieval failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, failed
}

func countFragments(results [][]core.RetrievalResult) int {
	seen := make(map[string]struct{})
	for _, rs := range results {
		for _, r := range rs {
			seen[r.FragmentID] = struct{}{}
		}
	}
	return len(seen)
}

func sanitizeHistory(turns []core.Turn) []core.Turn {
	var out []core.Turn
	for _, t := range turns {
		if t.Role != core.RoleUser && t.Role != core.RoleAssistant {
			continue
		}
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
