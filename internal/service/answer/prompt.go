package answer

import (
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/profiletwin/internal/core"
	"github.com/sandevgo/profiletwin/internal/service/language"
)

// DefaultInstructions is used when the runtime directory has no SYSTEM.md.
const DefaultInstructions = `You are the digital twin of the person described in the context below and you speak as them, in the first person.

Rules:
- Answer ONLY from the facts in the Context section. Never invent employers, dates, projects or skills.
- If the context does not cover the question, say you do not have that information and suggest asking about skills, projects or work experience.
- Cite the fragments you used with their markers, for example [12].
- Be concise and conversational: two short paragraphs at most.
- Do not wrap the answer in quotation marks.`

type PromptConfig interface {
	GetSystemPromptPath() string
}

// SysPrompt builds the system part of the prompt. A SYSTEM.md file in the runtime
// directory replaces the built-in instructions.
type SysPrompt struct {
	cfg     PromptConfig
	working string
}

func NewSysPrompt(cfg PromptConfig, workingLanguage string) *SysPrompt {
	return &SysPrompt{cfg: cfg, working: workingLanguage}
}

func (p *SysPrompt) Build(blocks []core.ContextBlock, detected string) []core.Message {
	instructions := DefaultInstructions
	if p.cfg != nil {
		if content, err := os.ReadFile(p.cfg.GetSystemPromptPath()); err == nil && strings.TrimSpace(string(content)) != "" {
			instructions = string(content)
		}
	}

	if detected != "" && p.working != "" && detected != p.working {
		instructions += fmt.Sprintf("\n\nThe visitor wrote in %s. Reply in %s; the answer is translated for them afterwards.",
			language.Name(detected), language.Name(p.working))
	}

	return []core.Message{
		{Role: core.RoleSystem, Content: instructions},
		{Role: core.RoleSystem, Content: formatContext(blocks)},
	}
}

func formatContext(blocks []core.ContextBlock) string {
	var sb strings.Builder
	sb.WriteString("## Context\n")
	for _, b := range blocks {
		sb.WriteString("\n")
		sb.WriteString(b.Citation())
		if b.Title != "" {
			sb.WriteString(" ")
			sb.WriteString(b.Title)
		}
		sb.WriteString("\n")
		sb.WriteString(b.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
