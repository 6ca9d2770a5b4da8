package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cafeliz/internal/vision"
)

func TestSuggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llava", req.Model)
		assert.Len(t, req.Images, 1)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    req.Model,
			"response": "Espresso | Café curto e forte | 8.50",
		})
	}))
	defer server.Close()

	s := New(server.URL, "llava")

	got, err := s.Suggest(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8, 0xFF, 0xE0}), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Espresso", got.Title)
	assert.Equal(t, "Café curto e forte", got.Description)
	assert.Equal(t, "8.50", got.Price)
}

func TestSuggestNoSuggestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "I don't know."})
	}))
	defer server.Close()

	_, err := New(server.URL, "llava").Suggest(context.Background(), bytes.NewReader([]byte{0xFF}), "image/jpeg")
	assert.ErrorIs(t, err, vision.ErrNoSuggestion)
}

func TestSuggestNetworkError(t *testing.T) {
	s := New("http://localhost:99999", "llava")

	_, err := s.Suggest(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.Error(t, err)
}

func TestSuggestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, "llava").Suggest(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.Error(t, err)
}

func TestSuggestReadError(t *testing.T) {
	_, err := New("http://localhost:11434", "llava").Suggest(context.Background(), errReader{}, "image/jpeg")
	assert.Error(t, err)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
