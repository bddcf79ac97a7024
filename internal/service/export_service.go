package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/export"
)

// Export formats supported for activity-log downloads.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// exportRowLimit caps synchronous exports.
const exportRowLimit = 5000

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders activity-log exports using the shared exporters.
type ExportService struct {
	usage  usageLogRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(usage usageLogRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{usage: usage, csv: export.NewCSVExporter(), pdf: export.NewPDFExporter(), logger: logger}
}

// ActivityLogs renders the filtered usage ledger as CSV or PDF. The filter
// semantics are identical to the query endpoint; pagination inputs are
// ignored and replaced by an internal page walk.
func (s *ExportService) ActivityLogs(ctx context.Context, filter models.UsageLogFilter, format string) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	entries, err := s.collect(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Batch", "Name", "Email", "Code", "Status", "Failure Reason", "Used At"},
	}
	for _, entry := range entries {
		reason := ""
		if entry.FailureReason != nil {
			reason = *entry.FailureReason
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Batch":          entry.BatchName,
			"Name":           entry.UserName,
			"Email":          entry.UserEmail,
			"Code":           entry.SignupCode,
			"Status":         string(entry.Status),
			"Failure Reason": reason,
			"Used At":        entry.UsedAt.UTC().Format(time.RFC3339),
		})
	}

	timestamp := time.Now().UTC().Format("20060102-150405")
	if format == ExportFormatCSV {
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "activity-logs-" + timestamp + ".csv"}, nil
	}

	content, err := s.pdf.Render(dataset, "Signup Activity Log")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "activity-logs-" + timestamp + ".pdf"}, nil
}

func (s *ExportService) collect(ctx context.Context, filter models.UsageLogFilter) ([]models.UsageLogDetail, error) {
	var all []models.UsageLogDetail
	filter.PageSize = 100
	for page := 1; len(all) < exportRowLimit; page++ {
		filter.Page = page
		entries, total, err := s.usage.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect usage logs")
		}
		all = append(all, entries...)
		if len(entries) < filter.PageSize || len(all) >= total {
			break
		}
	}
	if len(all) > exportRowLimit {
		all = all[:exportRowLimit]
	}
	return all, nil
}
