package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/unisel/admissions-api/internal/models"
	appErrors "github.com/unisel/admissions-api/pkg/errors"
	"github.com/unisel/admissions-api/pkg/export"
)

type exportListReader interface {
	FindListByID(ctx context.Context, id string) (*models.ConvocationList, error)
	ListAllRowsByList(ctx context.Context, listID string) ([]models.ConvocationListApplication, error)
}

// ExportService renders convocation lists as downloadable files.
type ExportService struct {
	convocations exportListReader
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(convocations exportListReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		convocations: convocations,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

var convocationExportHeaders = []string{
	"General Ranking", "Category Ranking", "Application", "Course",
	"Admission Category", "Convocation Status", "Result Status", "Response Status",
}

// ExportCSV renders a convocation list as CSV. Returns the bytes and a
// suggested file name.
func (s *ExportService) ExportCSV(ctx context.Context, listID string) ([]byte, string, error) {
	list, dataset, err := s.datasetForList(ctx, listID)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return payload, fmt.Sprintf("convocation-list-%d.csv", list.Ordinal), nil
}

// ExportPDF renders a convocation list as a tabular PDF.
func (s *ExportService) ExportPDF(ctx context.Context, listID string) ([]byte, string, error) {
	list, dataset, err := s.datasetForList(ctx, listID)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.pdf.Render(*dataset, list.Name)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return payload, fmt.Sprintf("convocation-list-%d.pdf", list.Ordinal), nil
}

func (s *ExportService) datasetForList(ctx context.Context, listID string) (*models.ConvocationList, *export.Dataset, error) {
	list, err := s.convocations.FindListByID(ctx, listID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "convocation list not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load convocation list")
	}

	rows, err := s.convocations.ListAllRowsByList(ctx, listID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list convocation rows")
	}

	dataset := &export.Dataset{Headers: convocationExportHeaders, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		categoryID := ""
		if row.AdmissionCategoryID != nil {
			categoryID = *row.AdmissionCategoryID
		}
		dataset.Rows = append(dataset.Rows, []string{
			strconv.Itoa(row.GeneralRanking),
			strconv.Itoa(row.CategoryRanking),
			row.ApplicationID,
			row.CourseID,
			categoryID,
			string(row.ConvocationStatus),
			string(row.ResultStatus),
			string(row.ResponseStatus),
		})
	}
	return list, dataset, nil
}
