package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_ListActive_Paginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/content-chunks", r.URL.Path)
		assert.Equal(t, "users API-Key tok", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.URL.Query().Get("where[isActive][equals]"))

		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"docs":[
				{"id":1,"title":"Python","content":"Ten years","isActive":true,"priority":3,"keywords":[{"keyword":"django"}]},
				{"id":2,"title":"Hidden","content":"x","isActive":false}
			],"hasNextPage":true}`))
		case "2":
			_, _ = w.Write([]byte(`{"docs":[{"id":"abc","title":"Java","content":"Five years"}],"hasNextPage":false}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	fragments, err := NewPayload(srv.URL, "tok", "content-chunks", 2).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	assert.Equal(t, "1", fragments[0].ID)
	assert.Equal(t, 3, fragments[0].Priority)
	assert.Equal(t, []string{"django"}, fragments[0].Keywords)
	assert.Equal(t, "abc", fragments[1].ID)
	assert.True(t, fragments[1].Active, "missing isActive defaults to active")
	assert.Equal(t, 1, fragments[1].EffectivePriority())
}

func TestPayload_ListActive_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewPayload(srv.URL, "", "content-chunks", 10).ListActive(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
}

func TestDocID_Unmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want DocID
	}{
		{`12`, "12"},
		{`"65f0c1"`, "65f0c1"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var id DocID
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id DocID
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}
