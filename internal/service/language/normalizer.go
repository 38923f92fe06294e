package language

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/log"
)

// Result is the outcome of normalizing an incoming message.
type Result struct {
	Original        string
	WorkingText     string
	Detected        string
	TranslationUsed bool
}

// Normalizer moves messages between the user's language and the working language.
type Normalizer struct {
	detector   *Detector
	translator core.Translator
	working    string
	timeout    time.Duration
}

func NewNormalizer(working string, translator core.Translator, timeout time.Duration) (*Normalizer, error) {
	base, err := baseTag(working)
	if err != nil {
		return nil, fmt.Errorf("invalid working language %q: %w", working, err)
	}

	return &Normalizer{
		detector:   NewDetector(base),
		translator: translator,
		working:    base,
		timeout:    timeout,
	}, nil
}

func (n *Normalizer) WorkingLanguage() string {
	return n.working
}

// Normalize detects the language of raw and translates it to the working language.
// It never fails: on any problem the original text is used as-is.
func (n *Normalizer) Normalize(ctx context.Context, raw string) Result {
	res := Result{
		Original:    raw,
		WorkingText: raw,
		Detected:    n.detector.Detect(raw),
	}

	if res.Detected == n.working || n.translator == nil {
		return res
	}

	translated, err := n.translate(ctx, raw, res.Detected, n.working)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).
			Str("language", res.Detected).
			Msg("query translation failed, using original text")
		return res
	}

	res.WorkingText = translated
	res.TranslationUsed = true
	return res
}

// Denormalize translates an answer back to the detected language.
// The second return value reports whether a translation happened.
func (n *Normalizer) Denormalize(ctx context.Context, answer, detected string) (string, bool) {
	if detected == "" || detected == n.working || n.translator == nil || strings.TrimSpace(answer) == "" {
		return answer, false
	}

	translated, err := n.translate(ctx, answer, n.working, detected)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).
			Str("language", detected).
			Msg("answer back-translation failed, replying in working language")
		return answer, false
	}
	return translated, true
}

func (n *Normalizer) translate(ctx context.Context, text, from, to string) (string, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	out, err := n.translator.Translate(ctx, text, from, to)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out, nil
}
