// Package vision turns a product photo into a suggested menu entry.
package vision

import (
	"context"
	"errors"
	"io"
)

// SuggestionPrompt is the shared prompt used by all vision adapters.
const SuggestionPrompt = `This is a photo of a product sold in a small Brazilian coffee shop.
Suggest a menu entry for it, written in Portuguese. Respond with exactly one line,
format: title | short description | price
The price is in reais, digits only with a dot as decimal separator (e.g. 8.50).`

var ErrNoSuggestion = errors.New("model response contained no suggestion")

type Suggester interface {
	Suggest(ctx context.Context, r io.Reader, mimeType string) (*Suggestion, error)
}

// Suggestion holds the values a model proposed for a menu item. Any field may
// be empty when the model left it out.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	RawResponse string `json:"-"`
}
