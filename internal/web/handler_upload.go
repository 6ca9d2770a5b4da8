package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/cafeliz/internal/form"
	"github.com/vbonduro/cafeliz/internal/imagestore"
	"github.com/vbonduro/cafeliz/internal/service"
	"github.com/vbonduro/cafeliz/internal/vision"
)

const maxImageSize = 10 * 1024 * 1024 // 10 MB

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readImage reads the multipart "image" field. On failure it has already
// written the error response.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1024*1024)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file required")
		return nil, "", false
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		s.logger.Error("read upload failed", "error", err)
		return nil, "", false
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported image format")
		return nil, "", false
	}
	return imageData, mimeType, true
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}

	url, err := s.service.AttachMenuImage(r.Context(), imageData, mimeType)
	switch {
	case errors.Is(err, form.ErrFormClosed):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.logger.Error("upload image failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store image")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
	}
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readImage(w, r)
	if !ok {
		return
	}

	sug, err := s.service.SuggestMenuItem(r.Context(), imageData, mimeType)
	switch {
	case errors.Is(err, form.ErrFormClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoSuggester):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, vision.ErrNoSuggestion):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		s.logger.Error("suggest menu item failed", "error", err)
		writeError(w, http.StatusBadGateway, "vision backend failed")
	default:
		s.logger.Debug("suggestion applied", "title", sug.Title)
		writeJSON(w, http.StatusOK, s.service.MenuForm.State())
	}
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	reader, mimeType, err := s.images.Get(r.Context(), key)
	if errors.Is(err, imagestore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Warn("get image failed", "key", key, "error", err)
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write image failed", "key", key, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
