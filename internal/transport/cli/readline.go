package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/pkg/log"
)

const defaultSessionID = "cli-local"

type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
}

type ReadLine struct {
	cfg     *config.AppConfig
	chat    Chatter
	cmds    core.CmdRouter
	rl      *readline.Instance
	verbose bool
}

func NewReadLine(chatter Chatter, cmds core.CmdRouter, cfg *config.AppConfig, verbose bool) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:     cfg,
		chat:    chatter,
		cmds:    cmds,
		rl:      rl,
		verbose: verbose,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	fmt.Fprintln(r.rl.Stdout(), "Ask me about my work, skills and projects. Type 'exit' to quit, /help for commands.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if out, ok := r.cmds.Execute(ctx, defaultSessionID, line); ok {
			fmt.Fprintln(r.rl.Stdout(), out)
			continue
		}

		resp, err := r.chat.Chat(ctx, chat.Request{Message: line, SessionID: defaultSessionID})
		if err != nil {
			logger.Error().Err(err).Msg("chat failed")
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(r.rl.Stdout(), "%s\n", resp.Response)
		if r.verbose {
			fmt.Fprintf(r.rl.Stdout(), "\033[38;5;240m%s\033[0m\n", FormatMetadata(resp.Metadata))
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

// FormatMetadata renders response metadata as a single dim status line.
func FormatMetadata(m chat.Metadata) string {
	parts := []string{
		"pattern=" + string(m.RAGPattern),
		"lang=" + m.Language.Detected,
		fmt.Sprintf("results=%d", m.ResultsFound),
	}
	if m.Language.TranslationUsed {
		parts = append(parts, "translated")
	}
	if m.Degraded {
		parts = append(parts, "degraded")
	}
	if len(m.Sources) > 0 {
		parts = append(parts, "sources="+strings.Join(m.Sources, ","))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
