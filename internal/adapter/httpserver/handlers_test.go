package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/domain/mocks"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

func newTestServer(ivRepo *mocks.MockInterviewRepository, cRepo *mocks.MockCandidateRepository, cvRepo *mocks.MockCVAnalysisRepository) *Server {
	llm := new(mocks.MockLLMProvider)
	emb := new(mocks.MockEmbeddingService)
	return &Server{
		Intake:     usecase.NewIntakeService(cRepo, cvRepo, llm, emb),
		Interviews: ivRepo,
		CVAnalyses: cvRepo,
	}
}

func router(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/candidates", s.RegisterCandidateHandler())
	r.Post("/v1/candidates/{id}/cv", s.AnalyzeCVHandler())
	r.Post("/v1/interviews", s.CreateInterviewHandler())
	r.Get("/v1/interviews/{id}", s.GetInterviewHandler())
	r.Get("/v1/interviews/{id}/summary", s.SummaryHandler())
	r.Get("/healthz", s.HealthzHandler())
	return r
}

func TestRegisterCandidate_Created(t *testing.T) {
	cRepo := new(mocks.MockCandidateRepository)
	cRepo.On("Create", mock.Anything, mock.Anything).Return("c-1", nil).Once()
	s := newTestServer(new(mocks.MockInterviewRepository), cRepo, new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/candidates",
		strings.NewReader(`{"name":"Ada Lovelace","email":"ada@example.com"}`))
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"c-1"`)
	cRepo.AssertExpectations(t)
}

func TestRegisterCandidate_InvalidEmail(t *testing.T) {
	s := newTestServer(new(mocks.MockInterviewRepository), new(mocks.MockCandidateRepository), new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/candidates",
		strings.NewReader(`{"name":"Ada","email":"not-an-email"}`))
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestRegisterCandidate_UnknownFieldRejected(t *testing.T) {
	s := newTestServer(new(mocks.MockInterviewRepository), new(mocks.MockCandidateRepository), new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/candidates",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","role":"admin"}`))
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeCV_MissingText(t *testing.T) {
	s := newTestServer(new(mocks.MockInterviewRepository), new(mocks.MockCandidateRepository), new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/candidates/c-1/cv", strings.NewReader(`{}`))
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateInterview_NoAnalysisForCandidate(t *testing.T) {
	cvRepo := new(mocks.MockCVAnalysisRepository)
	cvRepo.On("LatestByCandidate", mock.Anything, "c-1").
		Return(domain.CVAnalysis{}, domain.ErrNotFound).Once()
	s := newTestServer(new(mocks.MockInterviewRepository), new(mocks.MockCandidateRepository), cvRepo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/interviews",
		strings.NewReader(`{"candidate_id":"c-1"}`))
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
	cvRepo.AssertExpectations(t)
}

func TestGetInterview_NotFound(t *testing.T) {
	ivRepo := new(mocks.MockInterviewRepository)
	ivRepo.On("Get", mock.Anything, "missing").
		Return(domain.Interview{}, domain.ErrNotFound).Once()
	s := newTestServer(ivRepo, new(mocks.MockCandidateRepository), new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/interviews/missing", nil)
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummary_ReturnsCachedReport(t *testing.T) {
	ivRepo := new(mocks.MockInterviewRepository)
	ivRepo.On("Get", mock.Anything, "iv-1").Return(domain.Interview{
		ID:     "iv-1",
		Status: domain.StatusComplete,
		PlanMetadata: domain.PlanMetadata{
			CompletionSummary: `{"interview_id":"iv-1","overall_score":76.25}`,
		},
	}, nil).Once()
	s := newTestServer(ivRepo, new(mocks.MockCandidateRepository), new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/interviews/iv-1/summary", nil)
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"interview_id":"iv-1","overall_score":76.25}`, rec.Body.String())
}

func TestSummary_NotReadyBeforeCompletion(t *testing.T) {
	ivRepo := new(mocks.MockInterviewRepository)
	ivRepo.On("Get", mock.Anything, "iv-1").
		Return(domain.Interview{ID: "iv-1", Status: domain.StatusQuestioning}, nil).Once()
	s := newTestServer(ivRepo, new(mocks.MockCandidateRepository), new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/interviews/iv-1/summary", nil)
	router(s).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "QUESTIONING")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(new(mocks.MockInterviewRepository), new(mocks.MockCandidateRepository), new(mocks.MockCVAnalysisRepository))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router(s).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrProviderFailure, http.StatusBadGateway, "PROVIDER_FAILURE"},
		{domain.ErrUpstreamTimeout, http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"},
		{domain.ErrSchemaInvalid, http.StatusServiceUnavailable, "SCHEMA_INVALID"},
		{domain.ErrInternal, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, nil, tc.err, nil)
		assert.Equal(t, tc.status, rec.Code, tc.code)
		assert.Contains(t, rec.Body.String(), tc.code)
	}
}
