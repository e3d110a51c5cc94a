package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/session"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Intake      usecase.IntakeService
	Planner     usecase.Planner
	Summarizer  usecase.Summarizer
	Interviews  domain.InterviewRepository
	CVAnalyses  domain.CVAnalysisRepository
	Sessions    *session.Registry
	SessionDeps session.Deps

	DBCheck     func(ctx context.Context) error
	RedisCheck  func(ctx context.Context) error
	QdrantCheck func(ctx context.Context) error
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: body: %v", domain.ErrInvalidArgument, err)
	}
	if err := getValidator().Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

type registerCandidateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// RegisterCandidateHandler handles POST /v1/candidates.
func (s *Server) RegisterCandidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerCandidateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		c, err := s.Intake.RegisterCandidate(r.Context(), req.Name, req.Email)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":    c.ID,
			"name":  c.Name,
			"email": c.Email,
		})
	}
}

type analyzeCVRequest struct {
	CVText string `json:"cv_text" validate:"required"`
}

// AnalyzeCVHandler handles POST /v1/candidates/{id}/cv.
func (s *Server) AnalyzeCVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID := chi.URLParam(r, "id")
		var req analyzeCVRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		a, err := s.Intake.AnalyzeCV(r.Context(), candidateID, req.CVText)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":               a.ID,
			"candidate_id":     a.CandidateID,
			"skills":           a.Skills,
			"experience_years": a.ExperienceYears,
			"education_level":  a.EducationLevel,
			"suggested_topics": a.SuggestedTopics,
			"suggested_level":  a.SuggestedLevel,
			"summary":          a.Summary,
		})
	}
}

type createInterviewRequest struct {
	CandidateID  string `json:"candidate_id" validate:"required"`
	CVAnalysisID string `json:"cv_analysis_id"`
}

// CreateInterviewHandler handles POST /v1/interviews. Planning runs
// synchronously; the response carries the full plan shape.
func (s *Server) CreateInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createInterviewRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		analysisID := req.CVAnalysisID
		if analysisID == "" {
			a, err := s.CVAnalyses.LatestByCandidate(r.Context(), req.CandidateID)
			if err != nil {
				writeError(w, r, err, map[string]string{"field": "cv_analysis_id"})
				return
			}
			analysisID = a.ID
		}
		iv, err := s.Planner.Plan(r.Context(), analysisID, req.CandidateID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, interviewView(iv))
	}
}

// GetInterviewHandler handles GET /v1/interviews/{id}.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iv, err := s.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, interviewView(iv))
	}
}

// SummaryHandler handles GET /v1/interviews/{id}/summary. The report is
// computed once at completion and cached on the aggregate; this endpoint only
// reads it back.
func (s *Server) SummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iv, err := s.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if iv.Status != domain.StatusComplete || iv.PlanMetadata.CompletionSummary == "" {
			writeError(w, r, fmt.Errorf("%w: summary not available", domain.ErrNotFound),
				map[string]string{"status": string(iv.Status)})
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(iv.PlanMetadata.CompletionSummary))
	}
}

func interviewView(iv domain.Interview) map[string]any {
	return map[string]any{
		"id":                     iv.ID,
		"candidate_id":           iv.CandidateID,
		"cv_analysis_id":         iv.CVAnalysisID,
		"status":                 iv.Status,
		"question_count":         len(iv.QuestionIDs),
		"current_question_index": iv.CurrentQuestionIndex,
		"plan": map[string]any{
			"strategy":     iv.PlanMetadata.Strategy,
			"n":            iv.PlanMetadata.N,
			"generated_at": iv.PlanMetadata.GeneratedAt,
		},
		"started_at":   iv.StartedAt,
		"completed_at": iv.CompletedAt,
		"created_at":   iv.CreatedAt,
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler reports readiness of the backing services.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		checks := map[string]func(ctx context.Context) error{
			"db":     s.DBCheck,
			"redis":  s.RedisCheck,
			"qdrant": s.QdrantCheck,
		}
		status := http.StatusOK
		results := map[string]string{}
		for name, check := range checks {
			if check == nil {
				results[name] = "skipped"
				continue
			}
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, status, results)
	}
}
