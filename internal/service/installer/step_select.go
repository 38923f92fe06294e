package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	id    string
	title string
}

// SelectStep stores the id of the highlighted choice under key.
type SelectStep struct {
	title   string
	key     string
	choices []choice
	cursor  int
}

func NewProviderStep() Step {
	return &SelectStep{
		title: "Select your LLM provider:",
		key:   "LLM_PROVIDER",
		choices: []choice{
			{"groq", "Groq"},
			{"openai", "OpenAI"},
			{"anthropic", "Anthropic"},
			{"openrouter", "OpenRouter"},
			{"ollama", "Ollama (local)"},
			{"custom", "Custom OpenAI-compatible endpoint"},
		},
	}
}

func NewChannelStep() Step {
	return &SelectStep{
		title: "How will visitors reach the twin?",
		key:   keyChannel,
		choices: []choice{
			{"http", "HTTP API only"},
			{"telegram", "HTTP API and Telegram bot"},
		},
	}
}

func (s *SelectStep) Init() tea.Cmd {
	return nil
}

func (s *SelectStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars[s.key] = s.choices[s.cursor].id
			return nil, nil
		}
	}
	return s, nil
}

func (s *SelectStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("> %s", c.title)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.title)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
