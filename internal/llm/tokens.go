package llm

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// CountTokens counts prompt tokens for model. Falls back to a rough
// bytes-per-token estimate when the encoding is unavailable.
func CountTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// TrimHistory drops the oldest messages until the remainder fits budget.
// count is injectable so callers (and tests) control the token counter.
func TrimHistory(history []domain.ChatMessage, budget int, count func(string) int) []domain.ChatMessage {
	total := 0
	for _, m := range history {
		total += count(m.Content)
	}
	for len(history) > 0 && total > budget {
		total -= count(history[0].Content)
		history = history[1:]
	}
	return history
}
