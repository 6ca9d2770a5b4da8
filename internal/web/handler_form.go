package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vbonduro/cafeliz/internal/form"
	"github.com/vbonduro/cafeliz/internal/store"
)

// discarder is the other screen's form, closed whenever this one opens.
type discarder interface {
	Discard()
}

// formHandler exposes one collection and its form controller.
type formHandler[T any] struct {
	store  *store.Store[T]
	form   *form.Controller[T]
	other  discarder
	list   func() any
	logger *slog.Logger
}

func (h *formHandler[T]) register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix, h.handleList)
	mux.HandleFunc("GET "+prefix+"/form", h.handleState)
	mux.HandleFunc("POST "+prefix+"/form/new", h.handleNew)
	mux.HandleFunc("POST "+prefix+"/form/edit/{id}", h.handleEdit)
	mux.HandleFunc("PATCH "+prefix+"/form", h.handleSetFields)
	mux.HandleFunc("POST "+prefix+"/form/commit", h.handleCommit)
	mux.HandleFunc("POST "+prefix+"/form/discard", h.handleDiscard)
	mux.HandleFunc("POST "+prefix+"/form/remove", h.handleRemove)
}

func (h *formHandler[T]) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.list())
}

func (h *formHandler[T]) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.form.State())
}

func (h *formHandler[T]) handleNew(w http.ResponseWriter, r *http.Request) {
	h.other.Discard()
	h.form.OpenForCreate()
	writeJSON(w, http.StatusOK, h.form.State())
}

func (h *formHandler[T]) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	entity, ok := h.store.Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.other.Discard()
	h.form.OpenForEdit(entity)
	writeJSON(w, http.StatusOK, h.form.State())
}

// handleSetFields applies a JSON object of field name to value. An unknown
// name rejects the whole object and leaves the draft unchanged.
func (h *formHandler[T]) handleSetFields(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFieldsSize)).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid field object")
		return
	}

	if err := h.form.SetFields(fields); err != nil {
		h.writeFormError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.form.State())
}

func (h *formHandler[T]) handleCommit(w http.ResponseWriter, r *http.Request) {
	save, err := h.form.Commit(r.Context())
	if err != nil {
		h.writeFormError(w, err)
		return
	}
	h.respondAfterSave(w, r, save)
}

func (h *formHandler[T]) handleDiscard(w http.ResponseWriter, r *http.Request) {
	h.form.Discard()
	writeJSON(w, http.StatusOK, h.form.State())
}

func (h *formHandler[T]) handleRemove(w http.ResponseWriter, r *http.Request) {
	save, err := h.form.Remove(r.Context())
	if err != nil {
		h.writeFormError(w, err)
		return
	}
	h.respondAfterSave(w, r, save)
}

// respondAfterSave returns the updated collection. With ?wait=1 it first
// waits for the save to reach storage.
func (h *formHandler[T]) respondAfterSave(w http.ResponseWriter, r *http.Request, save *store.Save) {
	if r.URL.Query().Get("wait") == "1" {
		if err := save.Wait(r.Context()); err != nil {
			h.logger.Error("save failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save")
			return
		}
	}
	writeJSON(w, http.StatusOK, h.list())
}

func (h *formHandler[T]) writeFormError(w http.ResponseWriter, err error) {
	var (
		verr    *form.ValidationError
		unknown *store.UnknownFieldError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Missing: verr.Missing})
	case errors.As(err, &unknown):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, form.ErrFormClosed), errors.Is(err, form.ErrNotEditing):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("form action failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

const maxFieldsSize = 64 * 1024

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
