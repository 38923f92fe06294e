package command

import (
	"github.com/sandevgo/profiletwin/internal/core"
)

type Deps struct {
	Sessions   Sessions
	Index      IndexStats
	Transcript core.TranscriptRepository
	Model      string
}

func NewCommands(deps Deps) []core.Command {
	return []core.Command{
		NewResetCommand(deps.Sessions),
		NewStatusCommand(deps.Index, deps.Sessions, deps.Transcript, deps.Model),
		NewHistoryCommand(deps.Transcript),
	}
}
