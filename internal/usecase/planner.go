package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// PlanStrategy tags plan metadata with the algorithm that produced it.
const PlanStrategy = "adaptive_planning_v1"

// maxExemplars bounds how many reference questions steer each generation.
const maxExemplars = 3

// Planner pre-computes a bounded sequence of main questions, each paired with
// an ideal reference answer, before the session begins.
type Planner struct {
	CVAnalyses domain.CVAnalysisRepository
	Questions  domain.QuestionRepository
	Interviews domain.InterviewRepository
	LLM        domain.LLMProvider
	Embeddings domain.EmbeddingService
	Vectors    domain.VectorIndex
	Events     domain.EventPublisher
}

// QuestionCount derives the plan size purely from skill diversity.
// Experience years are deliberately ignored.
func QuestionCount(skills int) int {
	switch {
	case skills <= 2:
		return 2
	case skills <= 4:
		return 3
	case skills <= 7:
		return 4
	default:
		return 5
	}
}

// scheduleSlot picks (type, difficulty) by plan position: the first 60% of
// slots are TECHNICAL, the next 30% BEHAVIORAL, the remainder SITUATIONAL;
// the first 50% are EASY, the next 30% MEDIUM, the remainder HARD.
func scheduleSlot(i, n int) (domain.QuestionType, domain.Difficulty) {
	p := float64(i) / float64(n)
	qt := domain.QuestionTechnical
	switch {
	case p < 0.6:
		qt = domain.QuestionTechnical
	case p < 0.9:
		qt = domain.QuestionBehavioral
	default:
		qt = domain.QuestionSituational
	}
	d := domain.DifficultyEasy
	switch {
	case p < 0.5:
		d = domain.DifficultyEasy
	case p < 0.8:
		d = domain.DifficultyMedium
	default:
		d = domain.DifficultyHard
	}
	return qt, d
}

// Plan produces an interview with status IDLE and a populated question list.
// On generation failure, questions persisted so far are deleted best-effort
// and the error propagates; the interview never reaches IDLE.
func (p Planner) Plan(ctx domain.Context, cvAnalysisID, candidateID string) (domain.Interview, error) {
	tracer := otel.Tracer("usecase.planner")
	ctx, span := tracer.Start(ctx, "planner.Plan")
	defer span.End()

	analysis, err := p.CVAnalyses.Get(ctx, cvAnalysisID)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("op=plan.load_analysis: %w", err)
	}

	skills := analysis.SkillNames()
	n := QuestionCount(len(skills))

	iv := domain.Interview{
		ID:           uuid.New().String(),
		CandidateID:  candidateID,
		CVAnalysisID: cvAnalysisID,
		Status:       domain.StatusPlanning,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if _, err := p.Interviews.Create(ctx, iv); err != nil {
		return domain.Interview{}, fmt.Errorf("op=plan.create_interview: %w", err)
	}

	pc := domain.PlanContext{
		CVSummary:       analysis.Summary,
		Skills:          skills,
		ExperienceYears: analysis.ExperienceYears,
		SuggestedTopics: analysis.SuggestedTopics,
	}

	var questionIDs []string
	for i := 0; i < n; i++ {
		skill := "general"
		if len(skills) > 0 {
			skill = skills[i%len(skills)]
		}
		qt, diff := scheduleSlot(i, n)

		q, err := p.generateQuestion(ctx, pc, analysis, skill, qt, diff)
		if err != nil {
			p.compensate(ctx, questionIDs)
			return domain.Interview{}, fmt.Errorf("op=plan.generate q=%d: %w", i, err)
		}
		questionIDs = append(questionIDs, q.ID)
	}

	iv.QuestionIDs = questionIDs
	iv.Status = domain.StatusIdle
	iv.PlanMetadata = domain.PlanMetadata{
		Strategy:    PlanStrategy,
		N:           n,
		GeneratedAt: time.Now().UTC(),
		CVSummary:   analysis.Summary,
	}
	iv.UpdatedAt = time.Now().UTC()
	if err := p.Interviews.Update(ctx, iv); err != nil {
		p.compensate(ctx, questionIDs)
		return domain.Interview{}, fmt.Errorf("op=plan.mark_ready: %w", err)
	}

	if p.Events != nil {
		if err := p.Events.PublishInterviewEvent(ctx, domain.InterviewEvent{
			Type:        domain.EventInterviewPlanned,
			InterviewID: iv.ID,
			CandidateID: iv.CandidateID,
			Status:      string(iv.Status),
			OccurredAt:  time.Now().UTC(),
		}); err != nil {
			slog.Warn("planner: publish event failed", slog.Any("error", err))
		}
	}
	return iv, nil
}

// generateQuestion produces and persists one planned question with its ideal
// answer and rationale.
func (p Planner) generateQuestion(ctx domain.Context, pc domain.PlanContext, analysis domain.CVAnalysis, skill string, qt domain.QuestionType, diff domain.Difficulty) (domain.Question, error) {
	exemplars := p.retrieveExemplars(ctx, analysis, domain.ExemplarFilter{Skill: skill, Type: qt, Difficulty: diff})

	text, err := p.LLM.GenerateQuestion(ctx, domain.GenerateQuestionInput{
		Context:    pc,
		Skill:      skill,
		Type:       qt,
		Difficulty: diff,
		Exemplars:  exemplars,
	})
	if err != nil {
		return domain.Question{}, fmt.Errorf("generate_question: %w", err)
	}
	ideal, err := p.LLM.GenerateIdealAnswer(ctx, text, pc)
	if err != nil {
		return domain.Question{}, fmt.Errorf("generate_ideal_answer: %w", err)
	}
	rationale, err := p.LLM.GenerateRationale(ctx, text, ideal)
	if err != nil {
		return domain.Question{}, fmt.Errorf("generate_rationale: %w", err)
	}

	q := domain.Question{
		ID:          uuid.New().String(),
		Text:        text,
		Type:        qt,
		Difficulty:  diff,
		Skills:      []string{skill},
		IdealAnswer: ideal,
		Rationale:   rationale,
		Version:     1,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := p.Questions.Create(ctx, q); err != nil {
		return domain.Question{}, fmt.Errorf("persist_question: %w", err)
	}
	return q, nil
}

// retrieveExemplars fetches up to three reference questions matching the
// filter. The vector index is preferred when a CV embedding exists; the
// question store is the fallback. Retrieval failure degrades to zero
// exemplars rather than aborting the plan.
func (p Planner) retrieveExemplars(ctx domain.Context, analysis domain.CVAnalysis, f domain.ExemplarFilter) []domain.Exemplar {
	if p.Vectors != nil && len(analysis.Embedding) > 0 {
		hits, err := p.Vectors.FindSimilarQuestions(ctx, analysis.Embedding, maxExemplars, f)
		if err == nil && len(hits) > 0 {
			return hits
		}
		if err != nil {
			slog.Warn("planner: vector exemplar retrieval failed", slog.Any("error", err))
		}
	}
	qs, err := p.Questions.ListExemplars(ctx, f, maxExemplars)
	if err != nil {
		slog.Warn("planner: exemplar retrieval failed, proceeding without",
			slog.String("skill", f.Skill), slog.Any("error", err))
		return nil
	}
	out := make([]domain.Exemplar, 0, len(qs))
	for _, q := range qs {
		out = append(out, domain.Exemplar{QuestionID: q.ID, Text: q.Text})
	}
	return out
}

// compensate deletes questions created during a failed plan. Deletion is
// best-effort: failures are logged, never raised.
func (p Planner) compensate(ctx domain.Context, questionIDs []string) {
	for _, id := range questionIDs {
		if err := p.Questions.Delete(ctx, id); err != nil {
			slog.Warn("planner: compensation delete failed",
				slog.String("question_id", id), slog.Any("error", err))
		}
	}
}
