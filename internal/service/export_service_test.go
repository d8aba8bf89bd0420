package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/pkg/storage"
)

func newExportFixture(t *testing.T, sessions *stubSessions) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(sessions, store, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop())
}

func TestExportGenerateCSV(t *testing.T) {
	svc := newExportFixture(t, &stubSessions{records: studioRecords()})

	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypePerformance,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))
	assert.Equal(t, models.ReportFormatCSV, result.Format)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	buf := make([]byte, 4096)
	n, _ := file.Read(buf)
	content := string(buf[:n])
	assert.Contains(t, content, "Group")
	assert.Contains(t, content, "Power Yoga")
	assert.Contains(t, content, "$360.00")
	assert.Contains(t, content, "90.0%")
}

func TestExportGenerateXLSX(t *testing.T) {
	svc := newExportFixture(t, &stubSessions{records: studioRecords()})

	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeTrainers,
		Params: models.ReportJobParams{Format: models.ReportFormatXLSX},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".xlsx"))
}

func TestExportGenerateSummaryPDF(t *testing.T) {
	svc := newExportFixture(t, &stubSessions{records: studioRecords()})

	job := &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportTypeSummary,
		Params: models.ReportJobParams{Format: models.ReportFormatPDF},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))
}

func TestExportGenerateUnsupportedFormat(t *testing.T) {
	svc := newExportFixture(t, &stubSessions{records: studioRecords()})

	job := &models.ReportJob{
		ID:     "job-4",
		Type:   models.ReportTypePerformance,
		Params: models.ReportJobParams{Format: models.ReportFormat("doc")},
	}
	_, err := svc.Generate(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExportTokenRoundTrip(t *testing.T) {
	svc := newExportFixture(t, &stubSessions{records: studioRecords()})

	job := &models.ReportJob{
		ID:     "job-5",
		Type:   models.ReportTypeRevenue,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-5", jobID)
	assert.Equal(t, result.RelativePath, relPath)
}
