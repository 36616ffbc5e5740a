package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/export"
	"github.com/riannazhu/doc/internal/pipeline"
	"github.com/riannazhu/doc/internal/qa"
	"github.com/riannazhu/doc/internal/repository"
)

// Server exposes the document pipeline over HTTP.
type Server struct {
	ingestor *pipeline.Ingestor
	docs     repository.DocumentRepository
	qa       *qa.Service
	export   *export.Service
	logger   *slog.Logger
}

func New(ingestor *pipeline.Ingestor, docs repository.DocumentRepository, qaSvc *qa.Service, exportSvc *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ingestor: ingestor,
		docs:     docs,
		qa:       qaSvc,
		export:   exportSvc,
		logger:   logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload_document", s.handleUpload)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("POST /documents/{id}/explain", s.handleExplain)
	mux.HandleFunc("GET /documents/{id}/obligations", s.handleListObligations)
	mux.HandleFunc("GET /documents/{id}/obligations/export", s.handleExportObligations)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("http.write.failed", "error", err)
	}
}

// writeError maps failure classes onto HTTP statuses. Anything unclassified
// is a 500; the response body never leaks wrapped cause chains.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrExternalService), errors.Is(err, common.ErrRetrieval):
		status = http.StatusBadGateway
	case errors.Is(err, common.ErrStorage), errors.Is(err, common.ErrDatabase):
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	s.logger.Error("http.request.failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	s.writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
