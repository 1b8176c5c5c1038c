package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/specials-api/internal/models"
	appErrors "github.com/venuehub/specials-api/pkg/errors"
	"github.com/venuehub/specials-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type venueReader interface {
	Get(ctx context.Context, id string) (*models.Venue, error)
	ListSpecials(ctx context.Context, venueID string) ([]models.Special, error)
}

// ExportDocument is a rendered schedule export.
type ExportDocument struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders a venue's specials schedule as CSV or PDF.
type ExportService struct {
	venues venueReader
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(venues venueReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		venues: venues,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Render produces the export document for a venue in the requested format.
func (s *ExportService) Render(ctx context.Context, venueID, format string) (*ExportDocument, error) {
	format = strings.ToLower(format)
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	venue, err := s.venues.Get(ctx, venueID)
	if err != nil {
		return nil, err
	}
	specials, err := s.venues.ListSpecials(ctx, venueID)
	if err != nil {
		return nil, err
	}

	data := buildScheduleDataset(specials)

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportDocument{Content: content, ContentType: "text/csv", Filename: exportFilename(venue, "csv")}, nil
	default:
		content, err := s.pdf.Render(data, venue.Name+" - Specials Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportDocument{Content: content, ContentType: "application/pdf", Filename: exportFilename(venue, "pdf")}, nil
	}
}

func buildScheduleDataset(specials []models.Special) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Content", "Type", "Start Date", "Start Time", "End Time", "Expires", "Recurrence"},
	}
	for i := range specials {
		sp := &specials[i]
		endTime := ""
		if sp.EndTime != nil {
			endTime = sp.EndTime.String()
		}
		expires := ""
		if sp.ExpirationDate != nil {
			expires = sp.ExpirationDate.String()
		}
		data.Rows = append(data.Rows, []string{
			sp.Content,
			string(sp.Type),
			sp.StartDate.String(),
			sp.StartTime.String(),
			endTime,
			expires,
			describeRule(sp.Rule()),
		})
	}
	return data
}

func describeRule(rule models.RecurrenceRule) string {
	switch rule.Kind {
	case models.RuleWeekly:
		days := make([]string, 0, 7)
		for wd := 0; wd < 7; wd++ {
			if rule.DayMask&(1<<uint(wd)) != 0 {
				days = append(days, time.Weekday(wd).String()[:3])
			}
		}
		if rule.IntervalWeeks > 1 {
			return fmt.Sprintf("every %d weeks on %s", rule.IntervalWeeks, strings.Join(days, ","))
		}
		return "weekly on " + strings.Join(days, ",")
	case models.RuleCron:
		return "cron " + rule.CronExpr
	default:
		return "one time"
	}
}

func exportFilename(venue *models.Venue, ext string) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(venue.Name), " ", "-"))
	if name == "" {
		name = venue.ID
	}
	return fmt.Sprintf("%s-specials.%s", name, ext)
}
