package content

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
)

// DocID accepts both numeric (SQL adapters) and string (Mongo adapter) document ids.
type DocID string

func (id *DocID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = DocID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = DocID(n.String())
	return nil
}

// Doc is a content-chunks document as Payload serialises it.
type Doc struct {
	ID        DocID     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	ChunkType string    `json:"chunkType"`
	Priority  *float64  `json:"priority"`
	IsActive  *bool     `json:"isActive"`
	Keywords  []keyword `json:"keywords"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type keyword struct {
	Keyword string `json:"keyword"`
}

// Fragment converts the document to the core snapshot. A missing active flag means active,
// matching the collection default.
func (d Doc) Fragment() core.ContentFragment {
	f := core.ContentFragment{
		ID:        string(d.ID),
		Title:     d.Title,
		Body:      d.Content,
		Source:    d.Source,
		Type:      d.ChunkType,
		Active:    d.IsActive == nil || *d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Priority != nil {
		f.Priority = int(*d.Priority)
	}
	for _, k := range d.Keywords {
		if k.Keyword != "" {
			f.Keywords = append(f.Keywords, k.Keyword)
		}
	}
	return f
}

func (id DocID) String() string {
	return string(id)
}
