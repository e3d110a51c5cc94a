package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/pkg/textx"
)

// IntakeService registers candidates and turns extracted CV text into a
// structured CVAnalysis the planner can consume. File parsing happens
// upstream; this service receives plain text.
type IntakeService struct {
	Candidates domain.CandidateRepository
	CVAnalyses domain.CVAnalysisRepository
	LLM        domain.LLMProvider
	Embeddings domain.EmbeddingService
}

// NewIntakeService constructs an IntakeService with its dependencies.
func NewIntakeService(c domain.CandidateRepository, a domain.CVAnalysisRepository, llm domain.LLMProvider, emb domain.EmbeddingService) IntakeService {
	return IntakeService{Candidates: c, CVAnalyses: a, LLM: llm, Embeddings: emb}
}

// RegisterCandidate creates a candidate; email uniqueness is enforced by the store.
func (s IntakeService) RegisterCandidate(ctx domain.Context, name, email string) (domain.Candidate, error) {
	if name == "" || email == "" {
		return domain.Candidate{}, fmt.Errorf("%w: name and email required", domain.ErrInvalidArgument)
	}
	c := domain.Candidate{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.Candidates.Create(ctx, c)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("op=intake.create_candidate: %w", err)
	}
	c.ID = id
	return c, nil
}

// AnalyzeCV derives a structured profile from extracted CV text and persists
// it. The embedding is best-effort: analysis still succeeds without it, the
// planner just loses vector-based exemplar retrieval.
func (s IntakeService) AnalyzeCV(ctx domain.Context, candidateID, cvText string) (domain.CVAnalysis, error) {
	tracer := otel.Tracer("usecase.intake")
	ctx, span := tracer.Start(ctx, "intake.AnalyzeCV")
	defer span.End()

	cvText = textx.SanitizeText(cvText)
	if cvText == "" {
		return domain.CVAnalysis{}, fmt.Errorf("%w: cv text empty", domain.ErrInvalidArgument)
	}
	if _, err := s.Candidates.Get(ctx, candidateID); err != nil {
		return domain.CVAnalysis{}, fmt.Errorf("op=intake.load_candidate: %w", err)
	}

	profile, err := s.LLM.AnalyzeCV(ctx, cvText)
	if err != nil {
		return domain.CVAnalysis{}, fmt.Errorf("op=intake.analyze: %w", err)
	}

	a := domain.CVAnalysis{
		ID:              uuid.New().String(),
		CandidateID:     candidateID,
		Text:            cvText,
		Skills:          profile.Skills,
		ExperienceYears: profile.ExperienceYears,
		EducationLevel:  profile.EducationLevel,
		SuggestedTopics: profile.SuggestedTopics,
		SuggestedLevel:  profile.SuggestedLevel,
		Summary:         profile.Summary,
		CreatedAt:       time.Now().UTC(),
	}

	if vec, err := s.Embeddings.Embed(ctx, cvText); err != nil {
		slog.Warn("intake: cv embedding failed", slog.String("candidate_id", candidateID), slog.Any("error", err))
	} else {
		a.Embedding = vec
	}

	id, err := s.CVAnalyses.Create(ctx, a)
	if err != nil {
		return domain.CVAnalysis{}, fmt.Errorf("op=intake.persist_analysis: %w", err)
	}
	a.ID = id
	return a, nil
}
