package cli

import (
	"testing"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/stretchr/testify/assert"
)

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		name string
		meta chat.Metadata
		want string
	}{
		{
			name: "plain",
			meta: chat.Metadata{RAGPattern: core.PatternDirect, Language: chat.LanguageInfo{Detected: "en"}},
			want: "[pattern=direct lang=en results=0]",
		},
		{
			name: "everything",
			meta: chat.Metadata{
				RAGPattern:   core.PatternMultiHop,
				Language:     chat.LanguageInfo{Detected: "ne", TranslationUsed: true},
				ResultsFound: 4,
				Degraded:     true,
				Sources:      []string{"3", "9"},
			},
			want: "[pattern=multi_hop lang=ne results=4 translated degraded sources=3,9]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMetadata(tt.meta))
		})
	}
}
