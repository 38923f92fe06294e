// Package test holds in-memory fakes of the external services shared by package tests.
package test

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/sandevgo/profiletwin/internal/core"
)

// MockProvider is a test double for core.CompletionProvider.
type MockProvider struct {
	CompleteFunc func(ctx context.Context, req core.CompletionRequest) (string, error)

	mu    sync.Mutex
	calls []core.CompletionRequest
}

func (m *MockProvider) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "ok", nil
}

func (m *MockProvider) Calls() []core.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.CompletionRequest(nil), m.calls...)
}

// MockTranslator is a test double for core.Translator.
type MockTranslator struct {
	TranslateFunc func(ctx context.Context, text, from, to string) (string, error)

	mu    sync.Mutex
	calls [][3]string
}

func (m *MockTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, [3]string{text, from, to})
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, from, to)
	}
	return "[" + to + "] " + text, nil
}

// Calls returns (text, from, to) triples in call order.
func (m *MockTranslator) Calls() [][3]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][3]string(nil), m.calls...)
}

// MemoryIndex is an in-memory core.VectorIndex. Without QueryFunc it scores records by
// the share of query words found in the record data, which is enough to rank fixtures.
// Filters of the form `field GLOB '*text*'` joined by OR are honoured.
type MemoryIndex struct {
	QueryFunc  func(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error)
	UpsertFunc func(ctx context.Context, record core.VectorRecord) error
	DeleteFunc func(ctx context.Context, id string) error

	mu      sync.Mutex
	records map[string]core.VectorRecord
	queries []string
	filters []string
	upserts int
	deletes int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{records: make(map[string]core.VectorRecord)}
}

func (m *MemoryIndex) Query(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error) {
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.filters = append(m.filters, opts.Filter)
	m.mu.Unlock()

	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, opts)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(text))
	globs := globClauses.FindAllStringSubmatch(opts.Filter, -1)
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []core.VectorMatch
	for _, r := range m.records {
		if opts.Filter != "" && !matchesGlobs(r.Metadata, globs) {
			continue
		}
		data := strings.ToLower(r.Data)
		hits := 0
		for _, w := range words {
			if strings.Contains(data, w) {
				hits++
			}
		}
		if len(words) == 0 || (hits == 0 && opts.Filter == "") {
			continue
		}
		match := core.VectorMatch{ID: r.ID, Score: float64(hits) / float64(len(words))}
		if opts.IncludeMetadata {
			match.Metadata = r.Metadata
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if opts.TopK > 0 && len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}
	return matches, nil
}

var globClauses = regexp.MustCompile(`(\w+) GLOB '\*([^'*]*)\*'`)

func matchesGlobs(meta map[string]any, globs [][]string) bool {
	for _, g := range globs {
		if v, ok := meta[g[1]]; ok && strings.Contains(fmt.Sprint(v), g[2]) {
			return true
		}
	}
	return false
}

// Filters returns the filter of every query in call order.
func (m *MemoryIndex) Filters() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.filters...)
}

func (m *MemoryIndex) Upsert(ctx context.Context, record core.VectorRecord) error {
	if m.UpsertFunc != nil {
		if err := m.UpsertFunc(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	m.upserts++
	return nil
}

func (m *MemoryIndex) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		if err := m.DeleteFunc(ctx, id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	m.deletes++
	return nil
}

func (m *MemoryIndex) Info(ctx context.Context) (core.IndexInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.IndexInfo{Count: len(m.records)}, nil
}

// Range returns every record in id order on a single page.
func (m *MemoryIndex) Range(ctx context.Context, cursor string, limit int) ([]core.VectorRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]core.VectorRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, "", nil
}

func (m *MemoryIndex) Record(id string) (core.VectorRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

func (m *MemoryIndex) Put(records ...core.VectorRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r
	}
}

func (m *MemoryIndex) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Counts returns the number of upserts and deletes applied so far.
func (m *MemoryIndex) Counts() (upserts, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts, m.deletes
}

// StaticSource is a core.ContentSource serving a fixed list.
type StaticSource struct {
	Fragments []core.ContentFragment
	Err       error
}

func (s *StaticSource) ListActive(ctx context.Context) ([]core.ContentFragment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []core.ContentFragment
	for _, f := range s.Fragments {
		if f.Active {
			out = append(out, f)
		}
	}
	return out, nil
}

// MemoryLedger is an in-memory core.SyncLedger with the same attempt accounting as the
// sqlite one.
type MemoryLedger struct {
	mu     sync.Mutex
	states map[string]core.SyncState
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{states: make(map[string]core.SyncState)}
}

func (l *MemoryLedger) Get(ctx context.Context, fragmentID string) (*core.SyncState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.states[fragmentID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (l *MemoryLedger) Record(ctx context.Context, state core.SyncState) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, ok := l.states[state.FragmentID]
	if state.Status == core.SyncStatusFailed {
		state.Attempts = 1
		if ok {
			state.ContentHash = prev.ContentHash
			state.Attempts = prev.Attempts + 1
		}
	} else {
		state.Attempts = 0
	}
	l.states[state.FragmentID] = state
	return nil
}

func (l *MemoryLedger) ListFailed(ctx context.Context, limit int) ([]core.SyncState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []core.SyncState
	for _, s := range l.states {
		if s.Status == core.SyncStatusFailed {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FragmentID < out[j].FragmentID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
