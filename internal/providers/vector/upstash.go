package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
)

const service = "vector"

// Upstash talks to the Upstash Vector REST API. Embeddings are computed server side
// from the raw text, so the client only ever sends strings.
type Upstash struct {
	baseURL    string
	token      string
	namespace  string
	httpClient *http.Client
}

func NewUpstash(baseURL, token, namespace string) *Upstash {
	return &Upstash{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		namespace: namespace,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// Query runs a semantic search for text.
func (u *Upstash) Query(ctx context.Context, text string, opts core.QueryOptions) ([]core.VectorMatch, error) {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}

	body := map[string]any{
		"data":            text,
		"topK":            opts.TopK,
		"includeMetadata": opts.IncludeMetadata,
	}
	if opts.Filter != "" {
		body["filter"] = opts.Filter
	}

	var matches []core.VectorMatch
	if err := u.do(ctx, http.MethodPost, u.path("/query-data"), body, &matches); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return matches, nil
}

// Upsert stores a record, replacing any record with the same id.
func (u *Upstash) Upsert(ctx context.Context, record core.VectorRecord) error {
	body := map[string]any{
		"id":       record.ID,
		"data":     record.Data,
		"metadata": record.Metadata,
	}
	if err := u.do(ctx, http.MethodPost, u.path("/upsert-data"), body, nil); err != nil {
		return fmt.Errorf("upsert %s: %w", record.ID, err)
	}
	return nil
}

// Delete removes a record. Deleting a missing id is not an error.
func (u *Upstash) Delete(ctx context.Context, id string) error {
	var result struct {
		Deleted int `json:"deleted"`
	}
	if err := u.do(ctx, http.MethodPost, u.path("/delete"), []string{id}, &result); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (u *Upstash) Info(ctx context.Context) (core.IndexInfo, error) {
	var info core.IndexInfo
	if err := u.do(ctx, http.MethodGet, "/info", nil, &info); err != nil {
		return core.IndexInfo{}, fmt.Errorf("info: %w", err)
	}
	return info, nil
}

// Range pages through every stored record. An empty next cursor means the scan is done.
func (u *Upstash) Range(ctx context.Context, cursor string, limit int) ([]core.VectorRecord, string, error) {
	if cursor == "" {
		cursor = "0"
	}
	body := map[string]any{
		"cursor":          cursor,
		"limit":           limit,
		"includeMetadata": true,
	}

	var result struct {
		NextCursor string              `json:"nextCursor"`
		Vectors    []core.VectorRecord `json:"vectors"`
	}
	if err := u.do(ctx, http.MethodPost, u.path("/range"), body, &result); err != nil {
		return nil, "", fmt.Errorf("range: %w", err)
	}
	return result.Vectors, result.NextCursor, nil
}

func (u *Upstash) path(p string) string {
	if u.namespace == "" {
		return p
	}
	return p + "/" + u.namespace
}

func (u *Upstash) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return core.NewUpstreamError(service, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.NewUpstreamError(service, 0, fmt.Errorf("read body: %w", err))
	}

	var env envelope
	if len(data) > 0 {
		// error bodies are not always JSON
		_ = json.Unmarshal(data, &env)
	}

	if resp.StatusCode != http.StatusOK {
		msg := env.Error
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return core.NewUpstreamError(service, resp.StatusCode, errors.New(msg))
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
