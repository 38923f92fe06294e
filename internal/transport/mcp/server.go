package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/pkg/log"
)

const (
	defaultTopK = 5
	maxTopK     = 20
)

type Pipeline interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
	Search(ctx context.Context, query string, topK int) ([]core.RetrievalResult, error)
}

// Server exposes the profile pipeline as MCP tools over stdio.
type Server struct {
	pipeline Pipeline
	mcp      *server.MCPServer
	in       io.Reader
	out      io.Writer
}

func NewServer(pipeline Pipeline) *Server {
	s := &Server{
		pipeline: pipeline,
		mcp: server.NewMCPServer(
			core.TwinName,
			core.TwinVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		in:  os.Stdin,
		out: os.Stdout,
	}

	s.mcp.AddTool(mcpproto.NewTool("ask_profile",
		mcpproto.WithDescription("Ask the profile owner's digital twin a question about their work, skills and projects. Answers are grounded in the indexed profile."),
		mcpproto.WithString("question", mcpproto.Required(), mcpproto.Description("The question, in any supported language")),
		mcpproto.WithString("session_id", mcpproto.Description("Optional conversation id to keep follow-up context")),
	), s.ask)

	s.mcp.AddTool(mcpproto.NewTool("search_profile",
		mcpproto.WithDescription("Search the indexed profile fragments and return the best matches with scores."),
		mcpproto.WithString("query", mcpproto.Required(), mcpproto.Description("Search text")),
		mcpproto.WithNumber("top_k", mcpproto.Description("Number of results, 1-20 (default 5)")),
	), s.search)

	return s
}

// Start serves MCP on stdin/stdout until ctx ends or stdin closes.
func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("mcp server listening on stdio")

	err := server.NewStdioServer(s.mcp).Listen(ctx, s.in, s.out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Server) ask(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	question := req.GetString("question", "")
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = "mcp"
	}

	resp, err := s.pipeline.Chat(ctx, chat.Request{Message: question, SessionID: sessionID})
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return mcpproto.NewToolResultText(resp.Response), nil
}

func (s *Server) search(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	query := req.GetString("query", "")
	topK := req.GetInt("top_k", defaultTopK)
	topK = max(1, min(topK, maxTopK))

	results, err := s.pipeline.Search(ctx, query, topK)
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return mcpproto.NewToolResultText(string(body)), nil
}
