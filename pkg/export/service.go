package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/code-gritt/klientel/pkg/analytics"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
)

var ErrInvalidFormat = errors.New("invalid format: must be csv, excel or pdf")

// Result is a generated report, held in memory and handed to the caller
// for inline delivery.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

type PipelineReader interface {
	PipelineMetrics(ctx context.Context, userID int) ([]analytics.Metric, error)
}

// Service renders the pipeline report as a downloadable file.
type Service struct {
	pipeline PipelineReader
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewService(pipeline PipelineReader, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{pipeline: pipeline, log: log, metrics: m}
}

var reportHeader = []string{"Status", "Lead Count", "Conversion Rate (%)", "Avg Time in Stage (days)"}

// Export builds the user's pipeline report in the requested format.
func (s *Service) Export(ctx context.Context, userID int, format string) (*Result, error) {
	report, err := s.pipeline.PipelineMetrics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("pipeline metrics: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	var result *Result
	switch format {
	case "csv":
		result, err = generateCSV(report, timestamp)
	case "excel":
		result, err = generateExcel(report, timestamp)
	case "pdf":
		result, err = generatePDF(report, timestamp)
	default:
		return nil, ErrInvalidFormat
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordExportCreated(format)
	s.log.Info("report exported", "user_id", userID, "format", format, "bytes", len(result.Data))
	return result, nil
}

func generateCSV(report []analytics.Metric, timestamp string) (*Result, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(reportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range report {
		row := []string{
			m.Status,
			strconv.Itoa(m.LeadCount),
			strconv.FormatFloat(m.ConversionRatePercent, 'f', 2, 64),
			strconv.FormatFloat(m.AvgDwellDays, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: fmt.Sprintf("pipeline-report-%s.csv", timestamp),
		MimeType: "text/csv",
	}, nil
}

func generateExcel(report []analytics.Metric, timestamp string) (*Result, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Pipeline"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range reportHeader {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, m := range report {
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), m.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), m.LeadCount)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), m.ConversionRatePercent)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), m.AvgDwellDays)
	}

	for i := range reportHeader {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 22)
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: fmt.Sprintf("pipeline-report-%s.xlsx", timestamp),
		MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}
