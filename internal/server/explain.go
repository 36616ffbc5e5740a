package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/internal/common"
)

type explainRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, common.NewAppError("BAD_DOCUMENT_ID", "document id must be a UUID", common.ErrInvalidInput))
		return
	}

	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.NewAppError("BAD_JSON", "body must be JSON with a question field", common.ErrInvalidInput))
		return
	}

	// Confirm the document exists so an unknown id is a 404, not an
	// empty-retrieval error.
	if _, err := s.docs.GetByID(r.Context(), documentID); err != nil {
		s.writeError(w, r, err)
		return
	}

	ans, err := s.qa.Explain(r.Context(), documentID, req.Question)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ans)
}
