package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/smoothmigration/backend/internal/llm"
)

// Reply used whenever the model cannot be reached; the chat endpoint never
// surfaces a transport failure to the user.
const chatFallbackReply = "Sorry, I'm having trouble connecting right now. Please try again later."

// ChatCompleter is the text-generation capability the chat handler needs.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string, history []llm.Message) (string, error)
}

// ChatHandler serves the relocation assistant chat endpoint.
type ChatHandler struct {
	LLM    ChatCompleter
	Logger *slog.Logger
}

type chatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /chat. The conversation history is forwarded as-is
// ahead of the new user message; trimming it is the client's job.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, `{"error":"message not provided"}`, http.StatusBadRequest)
		return
	}

	reply, err := h.LLM.Complete(r.Context(), req.Message, req.History)
	if err != nil {
		h.Logger.Warn("chat completion failed", "error", err)
		reply = chatFallbackReply
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

// Health handles GET / — a liveness banner.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Smooth Migration LLM backend is running!"})
}
