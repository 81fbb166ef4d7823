package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	"github.com/noah-isme/study-mission-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var missionSheetHeaders = []string{"Date", "Day", "Time", "Subject", "Mission", "Description", "Target", "Status"}

var missionSheetWidths = []float64{2, 1, 2, 2, 4, 4, 1, 1.5}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, widths []float64) ([]byte, error)
}

// ExportService renders stored missions as a printable sheet.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// RenderMissions builds the mission sheet for one member and window.
func (s *ExportService) RenderMissions(memberID string, from, to time.Time, missions []models.StudyMission, format string) (*dto.MissionExport, error) {
	dataset := missionDataset(missions)
	base := fmt.Sprintf("missions_%s_%s_%s", sanitizeFilename(memberID), from.Format("20060102"), to.Format("20060102"))

	var (
		payload []byte
		err     error
		out     dto.MissionExport
	)
	switch strings.ToLower(format) {
	case "", ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		out = dto.MissionExport{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8"}
	case ExportFormatPDF:
		title := fmt.Sprintf("Study missions %s ~ %s", from.Format(dateLayout), to.Format(dateLayout))
		payload, err = s.pdf.Render(dataset, title, missionSheetWidths)
		out = dto.MissionExport{Filename: base + ".pdf", ContentType: "application/pdf"}
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.logger.Error("render missions sheet failed", zap.String("format", format), zap.Error(err))
		return nil, err
	}
	out.Payload = payload
	return &out, nil
}

func missionDataset(missions []models.StudyMission) export.Dataset {
	rows := make([]map[string]string, 0, len(missions))
	for _, m := range missions {
		rows = append(rows, map[string]string{
			"Date":        m.MissionDate.Format(dateLayout),
			"Day":         m.MissionDate.Weekday().String()[:3],
			"Time":        timeRange(m.StartTime, m.EndTime),
			"Subject":     m.Subject,
			"Mission":     m.Title,
			"Description": m.Description,
			"Target":      strconv.Itoa(m.TargetAmount),
			"Status":      string(m.Status),
		})
	}
	return export.Dataset{Headers: missionSheetHeaders, Rows: rows}
}

func timeRange(start, end *string) string {
	if start == nil || end == nil {
		return ""
	}
	return trimSeconds(*start) + "-" + trimSeconds(*end)
}

// trimSeconds shortens TIME values such as 19:00:00 to 19:00.
func trimSeconds(clock string) string {
	if len(clock) == len("15:04:05") && strings.Count(clock, ":") == 2 {
		return clock[:5]
	}
	return clock
}

func sanitizeFilename(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "member"
	}
	return b.String()
}
