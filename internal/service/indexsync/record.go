package indexsync

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/conv"
)

// ContentHash fingerprints every snapshot field mirrored into the index.
func ContentHash(f core.ContentFragment) string {
	h := sha256.New()
	for _, part := range []string{
		f.ID,
		f.Title,
		f.Body,
		f.Source,
		f.Type,
		strconv.Itoa(f.EffectivePriority()),
		strings.Join(f.Keywords, ","),
		f.CreatedAt.UTC().Format(time.RFC3339Nano),
		f.UpdatedAt.UTC().Format(time.RFC3339Nano),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BuildRecord maps an active fragment to its vector record. The same snapshot always
// yields the same record.
func BuildRecord(f core.ContentFragment) core.VectorRecord {
	body := conv.PlainText(f.Body)

	data := body
	if f.Title != "" {
		data = f.Title + "\n\n" + body
	}

	meta := map[string]any{
		"chunk_id":     f.ID,
		"title":        f.Title,
		"content":      body,
		"source":       f.Source,
		"chunk_type":   f.Type,
		"priority":     f.EffectivePriority(),
		"content_hash": ContentHash(f),
	}
	if len(f.Keywords) > 0 {
		meta["keywords"] = f.Keywords
	}
	if !f.CreatedAt.IsZero() {
		meta["created_at"] = f.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !f.UpdatedAt.IsZero() {
		meta["updated_at"] = f.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return core.VectorRecord{
		ID:       core.VectorID(f.ID),
		Data:     data,
		Metadata: meta,
	}
}
