package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/code-gritt/klientel/pkg/analytics"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
)

var testMetrics = metrics.New()

type stubPipeline struct {
	report []analytics.Metric
}

func (s stubPipeline) PipelineMetrics(context.Context, int) ([]analytics.Metric, error) {
	return s.report, nil
}

var sampleReport = []analytics.Metric{
	{Status: "New", LeadCount: 2, ConversionRatePercent: 50, AvgDwellDays: 1.25},
	{Status: "Contacted", LeadCount: 1},
	{Status: "Qualified", LeadCount: 0},
	{Status: "Closed", LeadCount: 0},
}

func newTestService(report []analytics.Metric) *Service {
	return NewService(stubPipeline{report: report}, logger.Default(), testMetrics)
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(sampleReport)

	result, err := svc.Export(context.Background(), 1, "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.MimeType)
	assert.True(t, strings.HasPrefix(result.Filename, "pipeline-report-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(result.Data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Status,Lead Count,Conversion Rate (%),Avg Time in Stage (days)", lines[0])
	assert.Equal(t, "New,2,50.00,1.25", lines[1])
	assert.Equal(t, "Contacted,1,0.00,0.00", lines[2])
}

func TestExportExcel(t *testing.T) {
	svc := newTestService(sampleReport)

	result, err := svc.Export(context.Background(), 1, "excel")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Filename, ".xlsx"))

	f, err := excelize.OpenReader(strings.NewReader(string(result.Data)))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Pipeline", "A2")
	require.NoError(t, err)
	assert.Equal(t, "New", got)

	count, err := f.GetCellValue("Pipeline", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newTestService(sampleReport)

	_, err := svc.Export(context.Background(), 1, "docx")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestRenderReportHTML(t *testing.T) {
	html, err := renderReportHTML(sampleReport, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, html, "<td>New</td>")
	assert.Contains(t, html, "<td class=\"num\">1.25</td>")
	assert.Contains(t, html, "Generated 2026-08-30 12:00 UTC")
}
