package models

// Prompt is the fully assembled provider input for one query.
type Prompt struct {
	System          string `json:"system"`
	User            string `json:"user"`
	MaxOutputTokens int    `json:"max_output_tokens"`
}

// AskRequest is the gateway request body. "prompt" is the only accepted field.
type AskRequest struct {
	Prompt string `json:"prompt"`
}

type RenderRequest struct {
	Markdown string `json:"markdown"`
}

type RenderResponse struct {
	HTML string `json:"html"`
}
