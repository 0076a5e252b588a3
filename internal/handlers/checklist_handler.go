package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/smoothmigration/backend/internal/models"
	"github.com/smoothmigration/backend/internal/services"
)

// ChecklistRunner is the pipeline contract the handler depends on.
type ChecklistRunner interface {
	Run(ctx context.Context, profile models.QuizProfile, profileMap map[string]any, emit services.Emitter) error
}

// ProfileValidator hard-rejects quiz payloads that don't match the schema.
type ProfileValidator interface {
	ValidateProfile(payload []byte) error
}

// ChecklistHandler serves POST /generate_tasks as an incrementally flushed
// newline-delimited JSON stream.
type ChecklistHandler struct {
	Pipeline  ChecklistRunner
	Validator ProfileValidator
	Logger    *slog.Logger
}

// GenerateTasks handles POST /generate_tasks.
// Validate profile -> run pipeline -> stream header, task records, trailer.
func (h *ChecklistHandler) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"error":"failed to read request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.Validator.ValidateProfile(body); err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	var profile models.QuizProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	var profileMap map[string]any
	if err := json.Unmarshal(body, &profileMap); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Logger.Error("response writer does not support flushing")
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	// Headers must be decided before the first record is written; a fatal
	// empty-store condition is surfaced by Run before it emits anything.
	enc := json.NewEncoder(w)
	wroteHeader := false
	emit := func(v any) error {
		if !wroteHeader {
			w.Header().Set("Content-Type", "application/x-ndjson")
			wroteHeader = true
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err = h.Pipeline.Run(r.Context(), profile, profileMap, emit)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNoTemplates):
		h.Logger.Error("checklist data not loaded, failing request")
		http.Error(w, `{"error":"base checklist data could not be loaded"}`, http.StatusInternalServerError)
	case errors.Is(err, context.Canceled):
		h.Logger.Info("client disconnected mid-stream")
	default:
		// The stream is already partially written; all we can do is log.
		h.Logger.Error("checklist stream aborted", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
