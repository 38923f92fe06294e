package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
)

const service = "content"

// Payload lists fragments from a Payload CMS collection over its REST API.
type Payload struct {
	baseURL    string
	token      string
	collection string
	pageSize   int
	httpClient *http.Client
}

func NewPayload(baseURL, token, collection string, pageSize int) *Payload {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Payload{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		collection: collection,
		pageSize:   pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListActive walks every page of active fragments.
func (p *Payload) ListActive(ctx context.Context) ([]core.ContentFragment, error) {
	var fragments []core.ContentFragment

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("where[isActive][equals]", "true")
		q.Set("limit", strconv.Itoa(p.pageSize))
		q.Set("page", strconv.Itoa(page))
		q.Set("depth", "0")

		var resp struct {
			Docs        []Doc `json:"docs"`
			HasNextPage bool  `json:"hasNextPage"`
		}
		if err := p.get(ctx, "/api/"+p.collection+"?"+q.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("list page %d: %w", page, err)
		}

		for _, d := range resp.Docs {
			f := d.Fragment()
			// the where clause is advisory on some Payload versions
			if f.Active {
				fragments = append(fragments, f)
			}
		}

		if !resp.HasNextPage {
			return fragments, nil
		}
	}
}

func (p *Payload) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if p.token != "" {
		req.Header.Set("Authorization", "users API-Key "+p.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return core.NewUpstreamError(service, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.NewUpstreamError(service, 0, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return core.NewUpstreamError(service, resp.StatusCode, errors.New(string(bytes.TrimSpace(data))))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
