package language

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	d := NewDetector("en")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "en"},
		{"plain english", "What projects have you built with Go?", "en"},
		{"english comparison", "Compare your Python vs Java experience", "en"},
		{"romanized hindi", "kya kaam karte ho aap", "hi"},
		{"romanized nepali", "tapai lai kasto chha", "ne"},
		{"nepali greeting", "namaste hajur, tapai ko kaam ke ho?", "ne"},
		{"devanagari hindi", "आप क्या काम करते हो?", "hi"},
		{"devanagari nepali", "तपाईं के काम गर्नुहुन्छ? राम्रो छ", "ne"},
		{"spanish without accents", "hola, cual es tu experiencia con python", "es"},
		{"spanish with accents", "¿Cuál es tu experiencia?", "es"},
		{"french", "Bonjour, quelle est votre expérience ?", "fr"},
		{"german", "Hallo, welche Erfahrung hast du mit Go?", "de"},
		{"chinese", "你做什么工作？", "zh"},
		{"japanese", "あなたの仕事は何ですか", "ja"},
		{"korean", "무슨 일을 하세요?", "ko"},
		{"russian", "Привет, где ты работаешь?", "ru"},
		{"arabic", "مرحبا، أين تعمل؟", "ar"},
		{"thai", "คุณทำงานอะไร", "th"},
		{"single keyword in short text is not enough", "hola Sajal", "en"},
		{"brand names in latin text", "Tell me about Next.js and PostgreSQL work at Canva", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestDetector_LongEnglishWithLookalikeWords(t *testing.T) {
	d := NewDetector("en")

	tests := []string{
		"could you comment on how you structured the services for the payments team",
		"the sim racing telemetry project you built, how did the data pipeline work",
		"tell me about the async io layer you wrote for the ingestion service last year",
		"did your work at the bank involve any eu data residency or compliance rules",
		"what non functional requirements mattered most when you designed that platform",
	}
	for _, text := range tests {
		assert.Equal(t, "en", d.Detect(text), text)
	}
}

func TestDetector_LongMessageNeedsOneKeyword(t *testing.T) {
	d := NewDetector("en")
	long := "please tell me more about the projects and the teams you led last year gracias"
	assert.Equal(t, "es", d.Detect(long))
}

func TestNormalizer_Normalize(t *testing.T) {
	ctx := context.Background()

	t.Run("working language is untouched", func(t *testing.T) {
		tr := &test.MockTranslator{}
		n, err := NewNormalizer("en-US", tr, time.Second)
		require.NoError(t, err)

		res := n.Normalize(ctx, "Where did you study?")
		assert.Equal(t, "en", res.Detected)
		assert.Equal(t, "Where did you study?", res.WorkingText)
		assert.False(t, res.TranslationUsed)
		assert.Empty(t, tr.Calls())
	})

	t.Run("informal foreign query is translated", func(t *testing.T) {
		tr := &test.MockTranslator{
			TranslateFunc: func(ctx context.Context, text, from, to string) (string, error) {
				return "What work do you do?", nil
			},
		}
		n, err := NewNormalizer("en", tr, time.Second)
		require.NoError(t, err)

		res := n.Normalize(ctx, "kya kaam karte ho aap")
		assert.Equal(t, "hi", res.Detected)
		assert.Equal(t, "What work do you do?", res.WorkingText)
		assert.Equal(t, "kya kaam karte ho aap", res.Original)
		assert.True(t, res.TranslationUsed)
		assert.Equal(t, [][3]string{{"kya kaam karte ho aap", "hi", "en"}}, tr.Calls())
	})

	t.Run("translation failure keeps original text and tag", func(t *testing.T) {
		tr := &test.MockTranslator{
			TranslateFunc: func(ctx context.Context, text, from, to string) (string, error) {
				return "", errors.New("provider down")
			},
		}
		n, err := NewNormalizer("en", tr, time.Second)
		require.NoError(t, err)

		res := n.Normalize(ctx, "kya kaam karte ho aap")
		assert.Equal(t, "hi", res.Detected)
		assert.Equal(t, "kya kaam karte ho aap", res.WorkingText)
		assert.False(t, res.TranslationUsed)
	})

	t.Run("slow translation times out", func(t *testing.T) {
		tr := &test.MockTranslator{
			TranslateFunc: func(ctx context.Context, text, from, to string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		}
		n, err := NewNormalizer("en", tr, 10*time.Millisecond)
		require.NoError(t, err)

		res := n.Normalize(ctx, "hola, cual es tu experiencia")
		assert.Equal(t, "es", res.Detected)
		assert.False(t, res.TranslationUsed)
	})
}

func TestNormalizer_Denormalize(t *testing.T) {
	ctx := context.Background()
	tr := &test.MockTranslator{}
	n, err := NewNormalizer("en", tr, time.Second)
	require.NoError(t, err)

	out, ok := n.Denormalize(ctx, "I work at Canva.", "en")
	assert.False(t, ok)
	assert.Equal(t, "I work at Canva.", out)

	out, ok = n.Denormalize(ctx, "I work at Canva.", "hi")
	assert.True(t, ok)
	assert.Equal(t, "[hi] I work at Canva.", out)
	assert.Equal(t, [3]string{"I work at Canva.", "en", "hi"}, tr.Calls()[0])
}

func TestNewNormalizer_InvalidTag(t *testing.T) {
	_, err := NewNormalizer("not a tag!", nil, time.Second)
	assert.Error(t, err)
}

func TestLLMTranslator_Translate(t *testing.T) {
	provider := &test.MockProvider{
		CompleteFunc: func(ctx context.Context, req core.CompletionRequest) (string, error) {
			return `"मैं कैनवा में काम करता हूँ"`, nil
		},
	}

	out, err := NewLLMTranslator(provider, "fast").Translate(context.Background(), "I work at Canva", "en", "hi")
	require.NoError(t, err)
	assert.Equal(t, "मैं कैनवा में काम करता हूँ", out)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "fast", calls[0].Model)
	assert.True(t, strings.Contains(calls[0].Messages[0].Content, "from English to Hindi"))
	assert.Equal(t, 128, calls[0].MaxTokens)
}

func TestName(t *testing.T) {
	assert.Equal(t, "Nepali", Name("ne"))
	assert.Equal(t, "Spanish", Name("es"))
	assert.Equal(t, "??", Name("??"))
}
