// Package tokens estimates prompt sizes for logging and metrics.
package tokens

import (
	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Counter counts tokens with a BPE encoding.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter loads the cl100k_base encoding. The first call may download the
// BPE ranks, so callers should fall back to a rough estimate on error.
func NewCounter() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Counter{encoding: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}
