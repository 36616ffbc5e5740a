package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/constants"
	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/entity"
)

// maxUploadBytes caps the request body of a document upload.
const maxUploadBytes = 32 << 20

type uploadResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, common.NewAppError("BAD_MULTIPART", "request must be multipart/form-data with a file field", common.ErrInvalidInput))
		return
	}

	userID, err := uuid.Parse(strings.TrimSpace(r.FormValue("user_id")))
	if err != nil {
		s.writeError(w, r, common.NewAppError("BAD_USER_ID", "user_id must be a UUID", common.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, common.NewAppError("MISSING_FILE", "file field is required", common.ErrInvalidInput))
		return
	}
	defer file.Close()

	// Validate the declared content type before any byte reaches storage.
	contentType := header.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !constants.IsAllowedContentType(contentType) {
		s.writeError(w, r, common.NewAppError("UNSUPPORTED_TYPE", "unsupported file type: "+contentType, common.ErrInvalidInput))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, common.NewAppError("READ_FAILED", "could not read uploaded file", common.ErrInvalidInput))
		return
	}

	documentID, err := s.ingestor.Ingest(r.Context(), userID, header.Filename, contentType, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		DocumentID: documentID.String(),
		Status:     string(constants.StatusProcessed),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		s.writeError(w, r, common.NewAppError("BAD_USER_ID", "user_id must be a UUID", common.ErrInvalidInput))
		return
	}

	docs, err := s.docs.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*entity.Document{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, common.NewAppError("BAD_DOCUMENT_ID", "document id must be a UUID", common.ErrInvalidInput))
		return
	}

	doc, err := s.docs.GetByID(r.Context(), documentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}
