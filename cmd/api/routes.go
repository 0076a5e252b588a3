package main

import (
	"log/slog"
	"net/http"

	"github.com/smoothmigration/backend/internal/handlers"
	"github.com/smoothmigration/backend/internal/llm"
	"github.com/smoothmigration/backend/internal/services"
	"github.com/smoothmigration/backend/internal/store"
)

// RegisterRoutes wires the checklist pipeline and chat endpoints onto the mux.
func RegisterRoutes(
	mux *http.ServeMux,
	st *store.Store,
	llmClient *llm.Client,
	validator *services.Validator,
	logger *slog.Logger,
) {
	matcher := services.NewMatcher(st, logger)
	personalizer := services.NewPersonalizer(llmClient, logger)
	pipeline := services.NewPipeline(st, matcher, personalizer, logger)

	checklist := &handlers.ChecklistHandler{
		Pipeline:  pipeline,
		Validator: validator,
		Logger:    logger,
	}
	chat := &handlers.ChatHandler{
		LLM:    llmClient,
		Logger: logger,
	}

	mux.HandleFunc("POST /generate_tasks", checklist.GenerateTasks)
	mux.HandleFunc("POST /chat", chat.Chat)
	mux.HandleFunc("GET /{$}", handlers.Health)
}
