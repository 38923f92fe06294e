package command

import (
	"context"
	"strconv"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/pkg/log"
)

type IndexStats interface {
	Info(ctx context.Context) (core.IndexInfo, error)
}

type StatusCommand struct {
	index      IndexStats
	sessions   Sessions
	transcript core.TranscriptRepository
	model      string
	formatter  *ResponseFormatter
}

func NewStatusCommand(index IndexStats, sessions Sessions, transcript core.TranscriptRepository, model string) *StatusCommand {
	return &StatusCommand{
		index:      index,
		sessions:   sessions,
		transcript: transcript,
		model:      model,
		formatter:  NewResponseFormatter(),
	}
}

func (c *StatusCommand) Name() string {
	return "status"
}

func (c *StatusCommand) Description() string {
	return "Show knowledge base and session status"
}

func (c *StatusCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	sections := []string{c.formatter.Info(core.TwinName + " " + core.TwinVersion)}

	fragments := "unavailable"
	if info, err := c.index.Info(ctx); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("status: index info failed")
	} else {
		fragments = strconv.Itoa(info.Count)
	}
	sections = append(sections, c.formatter.Label("Indexed fragments", fragments))

	if c.model != "" {
		sections = append(sections, c.formatter.Label("Model", c.model))
	}
	if c.sessions != nil {
		sections = append(sections, c.formatter.Label("Active sessions", strconv.Itoa(c.sessions.Count())))
	}
	if c.transcript != nil {
		if total, err := c.transcript.CountSessions(ctx); err == nil {
			sections = append(sections, c.formatter.Label("Sessions recorded", strconv.Itoa(total)))
		}
	}

	return c.formatter.Combine(sections...), nil
}
