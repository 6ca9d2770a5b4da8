package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSuggester(t *testing.T, handler http.HandlerFunc) *Suggester {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New("sk-test", "claude-test", anthropic.WithBaseURL(server.URL))
}

func TestSuggest(t *testing.T) {
	s := newTestSuggester(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Type string `json:"type"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, "image", req.Messages[0].Content[0].Type)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_1",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "Pão de queijo | Quentinho | R$ 6.00"},
			},
		})
	})

	got, err := s.Suggest(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Pão de queijo", got.Title)
	assert.Equal(t, "Quentinho", got.Description)
	assert.Equal(t, "6.00", got.Price)
}

func TestSuggestAPIError(t *testing.T) {
	s := newTestSuggester(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limited"}}`))
	})

	_, err := s.Suggest(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.Error(t, err)
}

func TestSuggestReadError(t *testing.T) {
	s := New("sk-test", "claude-test")

	_, err := s.Suggest(context.Background(), &errReader{}, "image/jpeg")
	assert.Error(t, err)
}

func TestNormaliseMIME(t *testing.T) {
	assert.Equal(t, "image/png", normaliseMIME("image/png"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/heic"))
}

// errReader always returns an error on Read.
type errReader struct{}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
