package service

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/internal/repository"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
	"github.com/pulsefit/studio-insights-api/pkg/jobs"
)

type memoryReportStore struct {
	mu   sync.Mutex
	jobs map[string]*models.ReportJob
}

func newMemoryReportStore() *memoryReportStore {
	return &memoryReportStore{jobs: make(map[string]*models.ReportJob)}
}

func (m *memoryReportStore) Create(_ context.Context, job *models.ReportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		job.ID = "job-test"
	}
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *memoryReportStore) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

func (m *memoryReportStore) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *memoryReportStore) ListQueued(_ context.Context, _ int) ([]models.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var queued []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (m *memoryReportStore) ListFinishedBefore(_ context.Context, _ time.Time, _ int) ([]models.ReportJob, error) {
	return nil, nil
}

type stubQueue struct {
	enqueued []jobs.Job
	err      error
}

func (s *stubQueue) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}

type stubGenerator struct {
	result *ExportResult
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, _ *models.ReportJob) (*ExportResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestReportServiceCreateJobEnqueues(t *testing.T) {
	store := newMemoryReportStore()
	queue := &stubQueue{}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:   models.ReportTypePerformance,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
}

func TestReportServiceCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	store := newMemoryReportStore()
	queue := &stubQueue{err: assert.AnError}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:   models.ReportTypeRevenue,
		Format: models.ReportFormatPDF,
	})
	require.Error(t, err)

	jobs, listErr := store.ListQueued(context.Background(), 10)
	require.NoError(t, listErr)
	assert.Empty(t, jobs)
}

func TestReportServiceGetStatusNotFound(t *testing.T) {
	svc := NewReportService(newMemoryReportStore(), &stubQueue{}, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.GetStatus(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestReportWorkerFinishesJob(t *testing.T) {
	store := newMemoryReportStore()
	job := &models.ReportJob{ID: "job-1", Type: models.ReportTypePerformance, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), job))

	worker := NewReportWorker(store, &stubGenerator{result: &ExportResult{URL: "/api/v1/export/tok"}}, nil, 3, zap.NewNop())
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1}))

	updated, err := store.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, updated.Status)
	assert.Equal(t, 100, updated.Progress)
	require.NotNil(t, updated.ResultURL)
	assert.Equal(t, "/api/v1/export/tok", *updated.ResultURL)
}

func TestReportWorkerRequeuesUntilMaxRetries(t *testing.T) {
	store := newMemoryReportStore()
	job := &models.ReportJob{ID: "job-1", Type: models.ReportTypePerformance, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), job))

	worker := NewReportWorker(store, &stubGenerator{err: assert.AnError}, nil, 3, zap.NewNop())

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1}))
	mid, err := store.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, mid.Status)

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 3}))
	final, err := store.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
}

// repeatingReportStore serves the same FINISHED page on every listing and
// ignores updates, the shape of a store whose rows never leave the cleanup
// window.
type repeatingReportStore struct {
	*memoryReportStore
	finished   []models.ReportJob
	listCalls  int
	clearCalls int
}

func (r *repeatingReportStore) ListFinishedBefore(_ context.Context, _ time.Time, limit int) ([]models.ReportJob, error) {
	r.listCalls++
	if limit >= len(r.finished) {
		return r.finished, nil
	}
	return r.finished[:limit], nil
}

func (r *repeatingReportStore) Update(_ context.Context, _ string, params repository.UpdateReportJobParams) error {
	if params.ResultURL != nil && *params.ResultURL == "" {
		r.clearCalls++
	}
	return nil
}

func TestCleanupExpiredTerminatesWhenRowsKeepReappearing(t *testing.T) {
	finishedAt := time.Now().Add(-48 * time.Hour)
	url := "/api/v1/export/stale-token"
	batch := make([]models.ReportJob, 100)
	for i := range batch {
		batch[i] = models.ReportJob{
			ID:         "job-" + strconv.Itoa(i),
			Status:     models.ReportStatusFinished,
			ResultURL:  &url,
			FinishedAt: &finishedAt,
		}
	}
	store := &repeatingReportStore{memoryReportStore: newMemoryReportStore(), finished: batch}
	exporter := newExportFixture(t, &stubSessions{})
	svc := NewReportService(store, &stubQueue{}, exporter, zap.NewNop(), ReportServiceConfig{ResultTTL: time.Hour})

	done := make(chan struct{})
	go func() {
		svc.cleanupExpired(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup pass did not terminate")
	}

	assert.LessOrEqual(t, store.listCalls, 2)
	assert.Equal(t, len(batch), store.clearCalls)
}

func TestCleanupExpiredStopsOnCancelledContext(t *testing.T) {
	url := "/api/v1/export/stale-token"
	finishedAt := time.Now().Add(-48 * time.Hour)
	store := &repeatingReportStore{
		memoryReportStore: newMemoryReportStore(),
		finished:          []models.ReportJob{{ID: "job-0", Status: models.ReportStatusFinished, ResultURL: &url, FinishedAt: &finishedAt}},
	}
	exporter := newExportFixture(t, &stubSessions{})
	svc := NewReportService(store, &stubQueue{}, exporter, zap.NewNop(), ReportServiceConfig{ResultTTL: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.cleanupExpired(ctx)

	assert.Zero(t, store.listCalls)
}
