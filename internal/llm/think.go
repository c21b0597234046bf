package llm

import (
	"regexp"
	"strings"
)

// Reasoning models such as qwen3 emit their chain of thought inline.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinking removes every <think>...</think> segment and trims the result.
func StripThinking(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}
