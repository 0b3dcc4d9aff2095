package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askdoc/askdoc-api/internal/domain"
	"github.com/askdoc/askdoc-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockJobService implements service.JobService for handler tests
type mockJobService struct {
	submitFn func(ctx context.Context, prompt string) (*domain.Job, error)
	getFn    func(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)
}

func (m *mockJobService) SubmitQuery(ctx context.Context, prompt string) (*domain.Job, error) {
	return m.submitFn(ctx, prompt)
}

func (m *mockJobService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	return m.getFn(ctx, jobID)
}

func newTestRouter(svc service.JobService) http.Handler {
	handler := NewQueryHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Post("/api/queries", handler.SubmitQuery)
	r.Get("/api/queries/{id}", handler.GetQueryStatus)
	return r
}

func TestSubmitQuery_Accepted(t *testing.T) {
	jobID := uuid.New()
	svc := &mockJobService{
		submitFn: func(ctx context.Context, prompt string) (*domain.Job, error) {
			assert.Equal(t, "what is in this document?", prompt)
			return &domain.Job{
				ID:     jobID,
				Prompt: prompt,
				Status: domain.JobStatusPending,
			}, nil
		},
	}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"prompt": "what is in this document?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/queries", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp QueryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, jobID.String(), resp.ID)
	require.NotNil(t, resp.Response)
	assert.Equal(t, PendingResponseText, *resp.Response)
	assert.Nil(t, resp.Error)
}

func TestSubmitQuery_EmptyPrompt(t *testing.T) {
	svc := &mockJobService{
		submitFn: func(ctx context.Context, prompt string) (*domain.Job, error) {
			t.Fatal("service must not be called for an invalid request")
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"prompt": ""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/queries", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitQuery_MalformedBody(t *testing.T) {
	svc := &mockJobService{
		submitFn: func(ctx context.Context, prompt string) (*domain.Job, error) {
			t.Fatal("service must not be called for a malformed request")
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{not json`)
	req := httptest.NewRequest(http.MethodPost, "/api/queries", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitQuery_ExecutorBusy(t *testing.T) {
	svc := &mockJobService{
		submitFn: func(ctx context.Context, prompt string) (*domain.Job, error) {
			return nil, service.ErrExecutorBusy
		},
	}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"prompt": "a prompt"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/queries", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSubmitQuery_StoreUnavailable(t *testing.T) {
	svc := &mockJobService{
		submitFn: func(ctx context.Context, prompt string) (*domain.Job, error) {
			return nil, service.ErrStoreUnavailable
		},
	}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"prompt": "a prompt"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/queries", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetQueryStatus_Pending(t *testing.T) {
	jobID := uuid.New()
	svc := &mockJobService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
			assert.Equal(t, jobID, id)
			return &domain.Job{
				ID:     jobID,
				Prompt: "a prompt",
				Status: domain.JobStatusPending,
			}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/queries/"+jobID.String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp QueryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, jobID.String(), resp.ID)
	require.NotNil(t, resp.Response)
	assert.Equal(t, PendingResponseText, *resp.Response)
	assert.Nil(t, resp.Error)
}

func TestGetQueryStatus_Completed(t *testing.T) {
	jobID := uuid.New()
	answer := "hi there"
	svc := &mockJobService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
			return &domain.Job{
				ID:       jobID,
				Prompt:   "hello",
				Status:   domain.JobStatusCompleted,
				Response: &answer,
			}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/queries/"+jobID.String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp QueryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.NotNil(t, resp.Response)
	assert.Equal(t, answer, *resp.Response)
	assert.Nil(t, resp.Error)
}

func TestGetQueryStatus_Failed(t *testing.T) {
	jobID := uuid.New()
	failure := "query processing timed out"
	svc := &mockJobService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
			return &domain.Job{
				ID:     jobID,
				Prompt: "hello",
				Status: domain.JobStatusFailed,
				Error:  &failure,
			}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/queries/"+jobID.String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp QueryJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Nil(t, resp.Response)
	require.NotNil(t, resp.Error)
	assert.Equal(t, failure, *resp.Error)
}

func TestGetQueryStatus_NotFound(t *testing.T) {
	svc := &mockJobService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
			return nil, service.ErrJobNotFound
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/queries/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetQueryStatus_InvalidID(t *testing.T) {
	svc := &mockJobService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
			t.Fatal("service must not be called for an unparseable ID")
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/queries/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
