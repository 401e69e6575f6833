package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"confessions/internal/apperr"
	"confessions/internal/ledger"
	"confessions/internal/models"
	"confessions/internal/query"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	ledger *ledger.Service
	query  *query.Engine
	log    logrus.FieldLogger
}

func New(l *ledger.Service, q *query.Engine, log logrus.FieldLogger) *Handler {
	return &Handler{ledger: l, query: q, log: log}
}

// -------- Stories

func (h *Handler) ListStories(w http.ResponseWriter, r *http.Request) {
	filter, ok := models.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid filter")
		return
	}
	sortBy, ok := models.ParseSortBy(r.URL.Query().Get("sortBy"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid sort")
		return
	}

	stories, err := h.query.ListStories(r.Context(), filter, sortBy)
	if err != nil {
		h.internal(w, r, err, "Failed to list stories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": stories})
}

func (h *Handler) GetStory(w http.ResponseWriter, r *http.Request) {
	story, err := h.query.GetStory(r.Context(), mux.Vars(r)["id"])
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	} else if err != nil {
		h.internal(w, r, err, "Failed to load story")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"story": story})
}

func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	var in ledger.StoryInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, ledger.MsgMissingFields)
		return
	}

	story, err := h.ledger.CreateStory(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "Failed to create story")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "story": story})
}

// -------- Tips

func (h *Handler) ListTips(w http.ResponseWriter, r *http.Request) {
	tips, err := h.query.ListTips(r.Context(), r.URL.Query().Get("storyId"))
	if err != nil {
		h.internal(w, r, err, "Failed to list tips")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tips": tips})
}

func (h *Handler) CreateTip(w http.ResponseWriter, r *http.Request) {
	var in ledger.TipInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, ledger.MsgInvalidTip)
		return
	}

	tip, err := h.ledger.CreateTip(r.Context(), in)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// Client went away during settlement; nothing was applied.
		h.log.WithField("story_id", in.StoryID).Warn("tip abandoned before settlement")
		return
	}
	if err != nil {
		h.fail(w, r, err, "Failed to process tip")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"tip":             tip,
		"transactionHash": tip.TransactionHash,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

// -------- helpers

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	var ve *apperr.ValidationError
	var nf *apperr.NotFoundError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, "Story not found")
	default:
		h.internal(w, r, err, internalMsg)
	}
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.log.WithError(err).
		WithField("method", r.Method).
		WithField("path", r.URL.Path).
		Error(msg)
	writeError(w, http.StatusInternalServerError, msg)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
