package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
)

// maxErrorBody bounds how much of a failed response ends up in the error text.
const maxErrorBody = 512

type baseProvider struct {
	client  *http.Client
	service string
	baseURL string
	apiKey  string
	model   string
}

func newBaseProvider(service, baseURL, apiKey, model string) baseProvider {
	return baseProvider{
		client: &http.Client{
			// per-call deadlines come from the caller's context
			Timeout: 120 * time.Second,
		},
		service: service,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (b *baseProvider) modelFor(req core.CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return b.model
}

// doRequest sends a JSON request and returns the raw body of a 2xx response.
// Everything else is reported as *core.UpstreamError.
func (b *baseProvider) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.TwinUserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, core.NewUpstreamError(b.service, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamError(b.service, 0, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, core.NewUpstreamError(b.service, resp.StatusCode, fmt.Errorf("%s", bytes.TrimSpace(data)))
	}
	return data, nil
}
