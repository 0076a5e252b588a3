package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/smoothmigration/backend/internal/llm"
	"github.com/smoothmigration/backend/internal/middleware"
	"github.com/smoothmigration/backend/internal/services"
	"github.com/smoothmigration/backend/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	checklistDir := envOr("CHECKLIST_DIR", "data/checklists")
	schemaDir := envOr("SCHEMA_DIR", "schemas")
	ollamaHost := envOr("OLLAMA_HOST", "http://localhost:11434")
	modelName := envOr("LLM_MODEL_NAME", "llama3.1:8b-instruct-q5_K_M")
	origins := strings.Split(envOr("FRONTEND_ORIGINS", "http://localhost:8100"), ",")
	llmTimeout := time.Duration(envInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second
	llmMaxConcurrent := int64(envInt("LLM_MAX_CONCURRENT", 4))

	st := store.Load(checklistDir, logger)
	if len(st.Templates()) == 0 {
		// Not fatal here: requests fail fast with a server error until the
		// data is fixed, matching the source-load failure contract.
		slog.Warn("no checklist templates loaded, generate_tasks will fail", "dir", checklistDir)
	}

	validator, err := services.NewValidator(schemaDir)
	if err != nil {
		slog.Error("quiz schema validator init failed", "error", err)
		os.Exit(1)
	}

	llmClient := llm.NewClient(ollamaHost, modelName, llmTimeout, llmMaxConcurrent)

	mux := http.NewServeMux()
	RegisterRoutes(mux, st, llmClient, validator, logger)

	handler := middleware.RequestLog(logger)(mux)
	handler = cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}).Handler(handler)

	port := envOr("PORT", "8000")
	addr := "0.0.0.0:" + port

	slog.Info("Starting HTTP server", "addr", addr, "model", modelName, "ollama", ollamaHost)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env value, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}
