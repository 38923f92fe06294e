package command

import (
	"context"

	"github.com/sandevgo/profiletwin/internal/core"
)

type Sessions interface {
	Reset(sessionID string)
	Count() int
}

type ResetCommand struct {
	sessions  Sessions
	formatter *ResponseFormatter
}

func NewResetCommand(sessions Sessions) *ResetCommand {
	return &ResetCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Forget the current conversation"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.sessions.Reset(sessionID)
	return c.formatter.Success("Conversation cleared"), nil
}

var _ core.Command = (*ResetCommand)(nil)
