package agent

import (
	_ "embed"
)

//go:embed prompts/system_prompt.md
var systemPrompt string

// GetSystemPrompt returns the analysis system prompt.
func GetSystemPrompt() string {
	return systemPrompt
}
