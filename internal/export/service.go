package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/riannazhu/doc/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	obligations repository.ObligationRepository
	docs        repository.DocumentRepository
	logger      *slog.Logger
}

func NewService(obligations repository.ObligationRepository, docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{obligations: obligations, docs: docs, logger: logger}
}

// ExportObligationsXLSX returns an XLSX workbook (as bytes) listing every
// obligation derived from the given document, one row per obligation.
func (s *Service) ExportObligationsXLSX(ctx context.Context, documentID uuid.UUID) ([]byte, error) {
	start := time.Now()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	obs, err := s.obligations.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("query obligations: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Obligations"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Document",
		"Type",
		"Title",
		"Due Date",
		"Amount",
		"Counterparty",
		"Status",
		"Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, o := range obs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, doc.FileName)
		write(2, string(o.Type))
		write(3, o.Title)

		if o.DueDate != nil {
			write(4, *o.DueDate)
		} else {
			write(4, "")
		}

		if o.AmountCents != nil {
			write(5, fmt.Sprintf("%.2f", float64(*o.AmountCents)/100))
		} else {
			write(5, "")
		}

		if o.Counterparty != nil {
			write(6, *o.Counterparty)
		} else {
			write(6, "")
		}

		write(7, o.Status)
		write(8, o.Confidence)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // file name
	_ = f.SetColWidth(sheet, "B", "B", 12) // type
	_ = f.SetColWidth(sheet, "C", "C", 40) // title
	_ = f.SetColWidth(sheet, "D", "D", 14) // due date
	_ = f.SetColWidth(sheet, "E", "E", 12) // amount
	_ = f.SetColWidth(sheet, "F", "F", 28) // counterparty
	_ = f.SetColWidth(sheet, "G", "H", 12) // status, confidence

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"document_id", documentID.String(),
		"rows", len(obs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
