package output

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultTokenModel is the model whose tokenizer sizes reduced trees.
const DefaultTokenModel = "gpt-4o"

// modelEncodings maps model name prefixes to their tiktoken encoding.
var modelEncodings = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4.1":       "o200k_base",
	"o1":            "o200k_base",
	"o3":            "o200k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

// TokenCounter measures how much prompt budget a serialized tree costs.
// The encoding is loaded on first use; when it cannot be loaded (tiktoken
// fetches its tables over the network) counts fall back to an estimate of
// four bytes per token.
type TokenCounter struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	initErr  error
}

// NewTokenCounter returns a counter for model. Unknown models use cl100k_base.
func NewTokenCounter(model string) *TokenCounter {
	return &TokenCounter{encoding: EncodingFor(model)}
}

// EncodingFor resolves a model name to its encoding by longest prefix.
func EncodingFor(model string) string {
	best, enc := "", "cl100k_base"
	for prefix, e := range modelEncodings {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, enc = prefix, e
		}
	}
	return enc
}

func (c *TokenCounter) init() error {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.initErr = fmt.Errorf("init tiktoken encoding %s: %w", c.encoding, err)
			return
		}
		c.enc = enc
	})
	return c.initErr
}

// Count returns the token count of text and whether it is exact.
func (c *TokenCounter) Count(text string) (int, bool) {
	if text == "" {
		return 0, true
	}
	if err := c.init(); err != nil {
		return (len(text) + 3) / 4, false
	}
	return len(c.enc.Encode(text, nil, nil)), true
}

// Encoding returns the tiktoken encoding name in use.
func (c *TokenCounter) Encoding() string {
	return c.encoding
}
