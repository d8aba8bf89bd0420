package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pulsefit/studio-insights-api/internal/dto"
)

type fakeImportSrv struct {
	resp *dto.ImportResponse
	err  error
}

func (f *fakeImportSrv) Import(_ context.Context, _ dto.ImportRequest) (*dto.ImportResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestSessionsHandlerImportSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionsHandler(&fakeImportSrv{resp: &dto.ImportResponse{Accepted: 2}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"sessions":[{"className":"Yoga","date":"2026-01-05"},{"className":"Spin","date":"2026-01-06"}]}`
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/import", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Import(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accepted":2`)
}

func TestSessionsHandlerImportPartial(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionsHandler(&fakeImportSrv{resp: &dto.ImportResponse{Accepted: 1, Rejected: 1}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"sessions":[{"className":"Yoga"},{}]}`
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/import", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Import(c)

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
}

func TestSessionsHandlerImportEmptyBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionsHandler(&fakeImportSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/import", strings.NewReader(`{"sessions":[]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Import(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
