package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var apiKeys = map[string]struct{ env, placeholder string }{
	"groq":       {"GROQ_API_KEY", "gsk_..."},
	"openai":     {"OPENAI_API_KEY", "sk-..."},
	"anthropic":  {"ANTHROPIC_API_KEY", "sk-ant-..."},
	"openrouter": {"OPENROUTER_API_KEY", "sk-or-v1-..."},
	"custom":     {"CUSTOM_OPENAI_API_KEY", "optional"},
}

// InputStep collects one value. A step whose skip func returns true completes
// without rendering.
type InputStep struct {
	title    string
	key      string
	optional bool
	// used when the answer is empty
	fallback string
	skip     func(state *InstallState) bool
	// resolves title and key from earlier answers
	prepare func(s *InputStep, state *InstallState)

	input    textinput.Model
	started  bool
	errorMsg string
}

func newInput(title, key, placeholder string, secret bool) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	return &InputStep{title: title, key: key, input: ti}
}

func NewAPIKeyStep() Step {
	s := newInput("API key", "", "", true)
	s.skip = func(state *InstallState) bool {
		_, ok := apiKeys[state.Provider()]
		return !ok
	}
	s.prepare = func(s *InputStep, state *InstallState) {
		k := apiKeys[state.Provider()]
		s.key = k.env
		s.title = fmt.Sprintf("Enter your %s API key", state.Provider())
		s.input.Placeholder = k.placeholder
		s.optional = state.Provider() == "custom"
	}
	return s
}

func NewOllamaURLStep() Step {
	s := newInput("Ollama base URL", "OLLAMA_BASE_URL", "http://127.0.0.1:11434", false)
	s.fallback = s.input.Placeholder
	s.skip = providerIsNot("ollama")
	return s
}

func NewCustomURLStep() Step {
	s := newInput("Custom OpenAI-compatible base URL", "CUSTOM_OPENAI_BASE_URL", "https://api.example.com/v1", false)
	s.skip = providerIsNot("custom")
	return s
}

func NewModelStep() Step {
	s := newInput("Model name (leave empty for the provider default)", "LLM_MODEL", "", false)
	s.optional = true
	return s
}

func NewVectorURLStep() Step {
	return newInput("Upstash Vector REST URL", "UPSTASH_VECTOR_REST_URL", "https://xxx-vector.upstash.io", false)
}

func NewVectorTokenStep() Step {
	return newInput("Upstash Vector REST token", "UPSTASH_VECTOR_REST_TOKEN", "", true)
}

func NewContentStoreStep() Step {
	s := newInput("Content store URL for full resync (optional)", "CONTENT_STORE_URL", "https://cms.example.com", false)
	s.optional = true
	return s
}

func NewWebhookSecretStep() Step {
	s := newInput("Content webhook secret (optional)", "CONTENT_WEBHOOK_SECRET", "", true)
	s.optional = true
	return s
}

func NewTelegramTokenStep() Step {
	s := newInput("Telegram bot token", "TELEGRAM_TOKEN", "123456789:ABCDEF...", true)
	s.skip = func(state *InstallState) bool { return state.EnvVars[keyChannel] != "telegram" }
	return s
}

func providerIsNot(id string) func(*InstallState) bool {
	return func(state *InstallState) bool { return state.Provider() != id }
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.started {
		if s.skip != nil && s.skip(state) {
			return nil, nil
		}
		if s.prepare != nil {
			s.prepare(s, state)
		}
		s.started = true
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			val = s.fallback
		}
		if val == "" && !s.optional {
			s.errorMsg = "a value is required"
			return s, cmd
		}
		state.EnvVars[s.key] = val
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := "(press enter to confirm)"
	if s.optional {
		hint = "(press enter to skip)"
	}
	view := s.title + ":\n\n" + s.input.View() + "\n\n" + hint + "\n"
	if s.errorMsg != "" {
		view += "\n" + errorStyle.Render(s.errorMsg) + "\n"
	}
	return view
}
