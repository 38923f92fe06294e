package assembler

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Sizer measures text against the context budget.
type Sizer interface {
	Size(text string) int
}

const encodingName = "cl100k_base"

// loadEncoding fetches the BPE ranks on first use. Swapped in tests.
var loadEncoding = func() (*tiktoken.Tiktoken, error) {
	return tiktoken.GetEncoding(encodingName)
}

// TokenSizer counts cl100k_base tokens.
type TokenSizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenSizer loads the encoding up front so a missing BPE file surfaces at startup.
func NewTokenSizer() (*TokenSizer, error) {
	enc, err := loadEncoding()
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encodingName, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("load %s encoding: empty encoding", encodingName)
	}
	return &TokenSizer{enc: enc}, nil
}

func (s *TokenSizer) Size(text string) int {
	if text == "" {
		return 0
	}
	if s == nil || s.enc == nil {
		return RuneSizer{}.Size(text)
	}
	return len(s.enc.Encode(text, nil, nil))
}

// RuneSizer counts characters. Used where the tokenizer data is unavailable.
type RuneSizer struct{}

func (RuneSizer) Size(text string) int {
	return utf8.RuneCountInString(text)
}

// NewSizer prefers token counting and degrades to rune counting when the encoding
// cannot be loaded. The returned error is informational.
func NewSizer() (Sizer, error) {
	ts, err := NewTokenSizer()
	if err != nil {
		return RuneSizer{}, err
	}
	return ts, nil
}
