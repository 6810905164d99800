package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// CountTokens returns the cl100k token count of text. When the encoding
// cannot be loaded it falls back to a four-characters-per-token estimate.
func CountTokens(text string) int {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding(tokenEncoding)
	})
	if encErr != nil {
		return EstimateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateTokens is the offline approximation used by CountTokens.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
