// Package usecase contains the application services of the interview engine:
// planner, evaluator, follow-up decider, summarizer and CV intake.
package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/pkg/textx"
)

// gapConfirmThreshold is the minimum number of keyword-gap candidates before
// the LLM is asked to confirm missing concepts.
const gapConfirmThreshold = 3

// similarityFloor replaces an exact-zero cosine similarity so a computed zero
// stays distinguishable from "not computed". Known wart carried over from the
// original scoring behavior.
const similarityFloor = 0.01

// Evaluator scores one answer against its question, computes semantic
// similarity to the reference answer, and detects concept gaps. It does not
// persist; that is the orchestrator's responsibility.
type Evaluator struct {
	LLM        domain.LLMProvider
	Embeddings domain.EmbeddingService
}

// NewEvaluator constructs an Evaluator with its capability providers.
func NewEvaluator(llm domain.LLMProvider, emb domain.EmbeddingService) Evaluator {
	return Evaluator{LLM: llm, Embeddings: emb}
}

// EvaluateRequest carries one answer with the question thread it belongs to.
// For a follow-up answer, QuestionID/QuestionText are the follow-up's while
// IdealAnswer stays the parent question's reference text.
type EvaluateRequest struct {
	InterviewID        string
	QuestionID         string
	QuestionText       string
	IdealAnswer        string
	Answer             domain.Answer
	Attempt            int
	ParentEvaluationID string
	Context            domain.PlanContext
}

// Evaluate runs the full scoring pipeline for one answer.
func (e Evaluator) Evaluate(ctx domain.Context, req EvaluateRequest) (domain.Evaluation, error) {
	tracer := otel.Tracer("usecase.evaluator")
	ctx, span := tracer.Start(ctx, "evaluator.Evaluate")
	defer span.End()

	answerText := textx.SanitizeText(req.Answer.Text)

	ev := domain.Evaluation{
		ID:            uuid.New().String(),
		AnswerID:      req.Answer.ID,
		QuestionID:    req.QuestionID,
		InterviewID:   req.InterviewID,
		AttemptNumber: req.Attempt,
		CreatedAt:     time.Now().UTC(),
	}
	if req.ParentEvaluationID != "" {
		pid := req.ParentEvaluationID
		ev.ParentEvaluationID = &pid
	}

	if answerText == "" {
		ev.Sentiment = "neutral"
		ev.Reasoning = "No answer was provided."
		if req.IdealAnswer != "" {
			// Evaluated answers against a reference always carry a
			// similarity; an empty answer bottoms out at the floor.
			sim := similarityFloor
			ev.SimilarityScore = &sim
		}
		ev.Penalty = domain.AttemptPenalty(req.Attempt)
		ev.FinalScore = domain.ClampScore(0 + ev.Penalty)
		return ev, nil
	}

	raw, err := e.LLM.EvaluateAnswer(ctx, domain.EvaluateAnswerInput{
		QuestionText: req.QuestionText,
		AnswerText:   answerText,
		IdealAnswer:  req.IdealAnswer,
		Context:      req.Context,
	})
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("op=evaluate.llm: %w", err)
	}
	ev.RawScore = domain.ClampScore(raw.Score)
	ev.Completeness = raw.Completeness
	ev.Relevance = raw.Relevance
	ev.Sentiment = raw.Sentiment
	ev.Strengths = raw.Strengths
	ev.Weaknesses = raw.Weaknesses
	ev.ImprovementSuggestions = raw.ImprovementSuggestions
	ev.Reasoning = raw.Reasoning

	// Behavioral-style questions carry no reference answer; similarity stays
	// nil and gap detection is skipped entirely.
	if req.IdealAnswer != "" {
		sim, err := e.similarity(ctx, answerText, req.IdealAnswer)
		if err != nil {
			return domain.Evaluation{}, fmt.Errorf("op=evaluate.similarity: %w", err)
		}
		ev.SimilarityScore = &sim

		gaps, err := e.detectGaps(ctx, answerText, req.IdealAnswer, req.QuestionText)
		if err != nil {
			return domain.Evaluation{}, fmt.Errorf("op=evaluate.gaps: %w", err)
		}
		for i := range gaps {
			gaps[i].EvaluationID = ev.ID
		}
		ev.Gaps = gaps
	}

	ev.Penalty = domain.AttemptPenalty(req.Attempt)
	ev.FinalScore = domain.ClampScore(ev.RawScore + ev.Penalty)
	return ev, nil
}

// similarity embeds both texts and maps cosine similarity into (0,1].
func (e Evaluator) similarity(ctx domain.Context, answerText, idealAnswer string) (float64, error) {
	av, err := e.Embeddings.Embed(ctx, answerText)
	if err != nil {
		return 0, err
	}
	iv, err := e.Embeddings.Embed(ctx, idealAnswer)
	if err != nil {
		return 0, err
	}
	sim := e.Embeddings.CosineSimilarity(av, iv)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	if sim == 0 {
		sim = similarityFloor
	}
	return sim, nil
}

// detectGaps runs the hybrid two-stage gap pipeline: a cheap keyword diff
// produces candidates, and the LLM confirms concepts only when enough
// candidates exist to be worth a call.
func (e Evaluator) detectGaps(ctx domain.Context, answerText, idealAnswer, questionText string) ([]domain.ConceptGap, error) {
	candidates := keywordGapCandidates(answerText, idealAnswer)
	if len(candidates) <= gapConfirmThreshold {
		return nil, nil
	}

	det, err := e.LLM.DetectConceptGaps(ctx, domain.GapDetectionInput{
		AnswerText:        answerText,
		IdealAnswer:       idealAnswer,
		QuestionText:      questionText,
		CandidateKeywords: candidates,
	})
	if err != nil {
		return nil, err
	}
	if !det.Confirmed || len(det.Concepts) == 0 {
		return nil, nil
	}

	severity := det.Severity
	if severity == "" {
		severity = inferSeverity(len(det.Concepts))
	}
	gaps := make([]domain.ConceptGap, 0, len(det.Concepts))
	for _, c := range det.Concepts {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		gaps = append(gaps, domain.ConceptGap{
			ID:       uuid.New().String(),
			Concept:  c,
			Severity: severity,
			Resolved: false,
		})
	}
	return gaps, nil
}

// keywordGapCandidates returns significant tokens present in the ideal answer
// but absent from the candidate's answer.
func keywordGapCandidates(answerText, idealAnswer string) []string {
	answered := make(map[string]struct{})
	for _, t := range textx.SignificantTokens(answerText) {
		answered[t] = struct{}{}
	}
	var out []string
	for _, t := range textx.SignificantTokens(idealAnswer) {
		if _, ok := answered[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// inferSeverity maps a confirmed gap count onto a severity tag when the
// provider did not supply one.
func inferSeverity(n int) domain.GapSeverity {
	switch {
	case n <= 1:
		return domain.SeverityMinor
	case n <= 3:
		return domain.SeverityModerate
	default:
		return domain.SeverityMajor
	}
}

// ResolvedGapIDs returns ids of previously unresolved gaps whose concept the
// new answer now covers. The resolved flag is forward-only; callers persist
// the flips.
func ResolvedGapIDs(prior []domain.Evaluation, answerText string) []string {
	var ids []string
	for _, ev := range prior {
		for _, g := range ev.Gaps {
			if g.Resolved {
				continue
			}
			if textx.ContainsConcept(answerText, g.Concept) {
				ids = append(ids, g.ID)
			}
		}
	}
	return ids
}
