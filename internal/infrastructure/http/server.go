// Package http provides the HTTP API, the outermost layer of the application.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/ports"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/usecases"
)

// Server exposes question answering and ingestion over JSON.
type Server struct {
	ask        *usecases.AskUseCase
	ingest     *usecases.IngestUseCase
	index      ports.VectorIndex
	corpusPath string
	addr       string
}

// NewServer creates the HTTP server.
func NewServer(
	ask *usecases.AskUseCase,
	ingest *usecases.IngestUseCase,
	index ports.VectorIndex,
	corpusPath string,
	addr string,
) *Server {
	return &Server{
		ask:        ask,
		ingest:     ingest,
		index:      index,
		corpusPath: corpusPath,
		addr:       addr,
	}
}

// Start runs the server until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/process", s.handleProcess)
	mux.HandleFunc("/api/health", s.handleHealth)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      corsMiddleware(loggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	log.Printf("[INFO] knowledge helper listening on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
	Evaluate bool   `json:"evaluate,omitempty"`
}

type sourceResponse struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
}

type askResponse struct {
	Answer     string                     `json:"answer"`
	Confidence float64                    `json:"confidence"`
	Degraded   bool                       `json:"degraded"`
	Sources    []sourceResponse           `json:"sources"`
	Evaluation *entities.EvaluationReport `json:"evaluation,omitempty"`
}

// handleAsk answers a question from the indexed corpus.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.ask.Ask(r.Context(), req.Question, req.TopK, req.Evaluate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := askResponse{
		Answer:     result.Answer,
		Confidence: result.Confidence,
		Degraded:   result.Degraded,
		Sources:    make([]sourceResponse, 0, len(result.Sources)),
		Evaluation: result.Evaluation,
	}
	for _, src := range result.Sources {
		resp.Sources = append(resp.Sources, sourceResponse{
			ID:         src.ID,
			DocumentID: src.DocumentID,
			Content:    src.Content,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type processRequest struct {
	Path    string `json:"path,omitempty"`
	Rebuild bool   `json:"rebuild,omitempty"`
}

// handleProcess ingests the corpus directory (or a given path) into the index.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// An empty body means "process the configured corpus".
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path := req.Path
	if path == "" {
		path = s.corpusPath
	}

	report, err := s.ingest.Process(r.Context(), path, req.Rebuild)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleHealth reports readiness. The index being empty is degraded, not
// unhealthy: the server is up, it just has nothing to answer from.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	empty, err := s.index.IsEmpty(r.Context())
	status := "healthy"
	if err != nil || empty {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"index_loaded": err == nil && !empty,
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrIndexNotInitialized):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrInvalidConfiguration),
		errors.Is(err, entities.ErrMalformedDocument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
