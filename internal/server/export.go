package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/riannazhu/doc/internal/common"
	"github.com/riannazhu/doc/internal/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleListObligations(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, common.NewAppError("BAD_DOCUMENT_ID", "document id must be a UUID", common.ErrInvalidInput))
		return
	}

	obs, err := s.ingestor.Obligations.ListByDocument(r.Context(), documentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if obs == nil {
		obs = []entity.Obligation{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"obligations": obs})
}

func (s *Server) handleExportObligations(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, common.NewAppError("BAD_DOCUMENT_ID", "document id must be a UUID", common.ErrInvalidInput))
		return
	}

	data, err := s.export.ExportObligationsXLSX(r.Context(), documentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "obligations_"+documentID.String()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("http.write.failed", "error", err)
	}
}
