package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/profiletwin/internal/core"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
	historyPreviewRunes = 160
)

type HistoryCommand struct {
	transcript core.TranscriptRepository
	formatter  *ResponseFormatter
}

func NewHistoryCommand(transcript core.TranscriptRepository) *HistoryCommand {
	return &HistoryCommand{
		transcript: transcript,
		formatter:  NewResponseFormatter(),
	}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Show recent messages of this conversation"
}

func (c *HistoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if c.transcript == nil {
		return "", fmt.Errorf("transcript is disabled")
	}

	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return c.formatter.Combine(
				c.formatter.Usage("/history [count]"),
				c.formatter.Examples([]string{"/history", "/history 20"}),
			), nil
		}
		limit = min(n, maxHistoryLimit)
	}

	turns, err := c.transcript.GetTurns(ctx, sessionID, limit)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}
	if len(turns) == 0 {
		return c.formatter.Info("No messages yet"), nil
	}

	items := make([]string, 0, len(turns))
	for _, t := range turns {
		who := "You"
		if t.Role == core.RoleAssistant {
			who = "Twin"
		}
		items = append(items, fmt.Sprintf("%s: %s", who, preview(t.Text)))
	}

	return c.formatter.Combine(
		c.formatter.Info("Recent messages"),
		c.formatter.List(items),
	), nil
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= historyPreviewRunes {
		return text
	}
	return string([]rune(text)[:historyPreviewRunes]) + "…"
}
