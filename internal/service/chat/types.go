package chat

import "github.com/sandevgo/profiletwin/internal/core"

type Request struct {
	Message   string      `json:"message"`
	History   []core.Turn `json:"conversationHistory,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	// nil means enabled
	EnhancedMode *bool `json:"enhancedMode,omitempty"`
}

type LanguageInfo struct {
	Detected        string `json:"detected"`
	TranslationUsed bool   `json:"translationUsed"`
}

type Metadata struct {
	RAGPattern   core.Pattern `json:"ragPattern"`
	Language     LanguageInfo `json:"language"`
	ResultsFound int          `json:"resultsFound"`
	SessionID    string       `json:"sessionId"`
	Degraded     bool         `json:"degraded,omitempty"`
	Sources      []string     `json:"sources,omitempty"`
}

type Response struct {
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}
