package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/cafeliz/internal/vision"
)

// maxTokens leaves room for a single suggestion line plus any preamble.
const maxTokens = 256

type Suggester struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string, opts ...anthropic.ClientOption) *Suggester {
	return &Suggester{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (s *Suggester) Suggest(ctx context.Context, r io.Reader, mimeType string) (*vision.Suggestion, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := s.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(s.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					normaliseMIME(mimeType),
					base64.StdEncoding.EncodeToString(imageData),
				)),
				anthropic.NewTextMessageContent(vision.SuggestionPrompt),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	return vision.ParseSuggestion(resp.GetFirstContentText())
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// Unknown types are sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
