package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// Scoring weights for the overall interview score.
const (
	theoreticalWeight    = 0.7
	speakingWeight       = 0.3
	defaultSpeakingScore = 50.0
)

// QuestionBreakdown is the per-main-question slice of the final report.
type QuestionBreakdown struct {
	QuestionID      string   `json:"question_id"`
	QuestionText    string   `json:"question_text"`
	MainAnswerScore float64  `json:"main_answer_score"`
	FollowUpCount   int      `json:"follow_up_count"`
	InitialGaps     []string `json:"initial_gaps"`
	FinalGaps       []string `json:"final_gaps"`
	Improvement     bool     `json:"improvement"`
}

// GapProgression aggregates gap movement across the whole interview.
type GapProgression struct {
	QuestionsWithFollowUps  int     `json:"questions_with_followups"`
	GapsFilled              int     `json:"gaps_filled"`
	GapsRemaining           int     `json:"gaps_remaining"`
	AvgFollowUpsPerQuestion float64 `json:"avg_followups_per_question"`
}

// DetailedFeedback is the structured completion report.
type DetailedFeedback struct {
	InterviewID     string                 `json:"interview_id"`
	OverallScore    float64                `json:"overall_score"`
	TheoreticalAvg  float64                `json:"theoretical_avg"`
	SpeakingAvg     float64                `json:"speaking_avg"`
	TotalQuestions  int                    `json:"total_questions"`
	TotalAnswers    int                    `json:"total_answers"`
	Breakdown       []QuestionBreakdown    `json:"breakdown"`
	GapProgression  GapProgression         `json:"gap_progression"`
	Recommendations domain.Recommendations `json:"recommendations"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// Summarizer aggregates per-answer evaluations and gap progression into the
// completion report. It runs once, during the COMPLETE transition; callers
// read the cached result back afterwards.
type Summarizer struct {
	Interviews  domain.InterviewRepository
	Questions   domain.QuestionRepository
	FollowUps   domain.FollowUpRepository
	Answers     domain.AnswerRepository
	Evaluations domain.EvaluationRepository
	LLM         domain.LLMProvider
}

// fallbackRecommendations is substituted when the provider's JSON cannot be
// parsed; the report must never fail for want of coaching copy.
var fallbackRecommendations = domain.Recommendations{
	Strengths:     []string{"Engaged with every question", "Completed the full interview", "Communicated answers clearly"},
	Weaknesses:    []string{"Some concepts from the reference answers were not covered", "Depth varied between topics", "Follow-up answers left gaps open"},
	StudyTopics:   []string{"Review the core concepts behind each question", "Practice explaining trade-offs out loud", "Revisit fundamentals of the weakest topic"},
	TechniqueTips: []string{"Structure answers as context, approach, result", "Name the concepts you rely on explicitly"},
}

// Summarize builds the detailed feedback for a finished interview. It is
// idempotent: the same interview always produces the same aggregate numbers.
func (s Summarizer) Summarize(ctx domain.Context, interviewID string) (DetailedFeedback, error) {
	tracer := otel.Tracer("usecase.summarizer")
	ctx, span := tracer.Start(ctx, "summarizer.Summarize")
	defer span.End()

	iv, err := s.Interviews.Get(ctx, interviewID)
	if err != nil {
		return DetailedFeedback{}, fmt.Errorf("op=summarize.load_interview: %w", err)
	}
	answers, err := s.Answers.ListByInterview(ctx, interviewID)
	if err != nil {
		return DetailedFeedback{}, fmt.Errorf("op=summarize.load_answers: %w", err)
	}
	evals, err := s.Evaluations.ListByInterview(ctx, interviewID)
	if err != nil {
		return DetailedFeedback{}, fmt.Errorf("op=summarize.load_evaluations: %w", err)
	}

	evalByAnswer := make(map[string]domain.Evaluation, len(evals))
	for _, ev := range evals {
		evalByAnswer[ev.AnswerID] = ev
	}

	theoreticalAvg, speakingAvg := aggregateScores(answers, evalByAnswer)
	overall := theoreticalWeight*theoreticalAvg + speakingWeight*speakingAvg

	breakdown, progression, err := s.buildBreakdown(ctx, iv, evals)
	if err != nil {
		return DetailedFeedback{}, err
	}

	recs := s.recommendations(ctx, iv, evals, progression)

	return DetailedFeedback{
		InterviewID:     iv.ID,
		OverallScore:    overall,
		TheoreticalAvg:  theoreticalAvg,
		SpeakingAvg:     speakingAvg,
		TotalQuestions:  len(iv.QuestionIDs),
		TotalAnswers:    len(answers),
		Breakdown:       breakdown,
		GapProgression:  progression,
		Recommendations: recs,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// aggregateScores averages final scores and speaking scores across evaluated
// answers. Answers without voice metrics contribute the speaking default.
func aggregateScores(answers []domain.Answer, evalByAnswer map[string]domain.Evaluation) (theoretical, speaking float64) {
	var theoSum, speakSum float64
	var theoN, speakN int
	for _, a := range answers {
		ev, ok := evalByAnswer[a.ID]
		if !ok {
			continue
		}
		theoSum += ev.FinalScore
		theoN++
		if a.VoiceMetrics != nil {
			speakSum += a.VoiceMetrics.OverallScore()
		} else {
			speakSum += defaultSpeakingScore
		}
		speakN++
	}
	if theoN == 0 {
		return 0, defaultSpeakingScore
	}
	theoretical = theoSum / float64(theoN)
	if speakN == 0 {
		speaking = defaultSpeakingScore
	} else {
		speaking = speakSum / float64(speakN)
	}
	return theoretical, speaking
}

// buildBreakdown groups evaluations by main question; follow-up answers
// associate through their parent question thread via attempt ordering.
func (s Summarizer) buildBreakdown(ctx domain.Context, iv domain.Interview, evals []domain.Evaluation) ([]QuestionBreakdown, GapProgression, error) {
	var breakdown []QuestionBreakdown
	var prog GapProgression
	var totalFollowUps int

	for _, qid := range iv.QuestionIDs {
		q, err := s.Questions.Get(ctx, qid)
		if err != nil {
			return nil, GapProgression{}, fmt.Errorf("op=summarize.load_question: %w", err)
		}
		followUps, err := s.FollowUps.ListByParent(ctx, qid)
		if err != nil {
			return nil, GapProgression{}, fmt.Errorf("op=summarize.load_followups: %w", err)
		}

		thread := threadQuestionIDs(qid, followUps)
		group := evaluationsFor(evals, iv.ID, thread)
		if len(group) == 0 {
			continue
		}

		main := group[0]
		last := group[len(group)-1]
		initialGaps := gapConcepts(main.UnresolvedGaps())
		finalGaps := gapConcepts(last.UnresolvedGaps())

		breakdown = append(breakdown, QuestionBreakdown{
			QuestionID:      qid,
			QuestionText:    q.Text,
			MainAnswerScore: main.FinalScore,
			FollowUpCount:   len(followUps),
			InitialGaps:     initialGaps,
			FinalGaps:       finalGaps,
			Improvement:     len(finalGaps) < len(initialGaps),
		})

		if len(followUps) > 0 {
			prog.QuestionsWithFollowUps++
			totalFollowUps += len(followUps)
		}
		filled := len(initialGaps) - len(finalGaps)
		if filled > 0 {
			prog.GapsFilled += filled
		}
		prog.GapsRemaining += len(finalGaps)
	}

	if prog.QuestionsWithFollowUps > 0 {
		prog.AvgFollowUpsPerQuestion = float64(totalFollowUps) / float64(prog.QuestionsWithFollowUps)
	}
	return breakdown, prog, nil
}

// threadQuestionIDs lists the main question id plus its follow-up ids in order.
func threadQuestionIDs(parentID string, followUps []domain.FollowUpQuestion) []string {
	ids := []string{parentID}
	for _, f := range followUps {
		ids = append(ids, f.ID)
	}
	return ids
}

// evaluationsFor selects the evaluations of one question thread in thread
// order: main answer first, then follow-up answers.
func evaluationsFor(evals []domain.Evaluation, interviewID string, threadIDs []string) []domain.Evaluation {
	var out []domain.Evaluation
	for _, id := range threadIDs {
		for _, ev := range evals {
			if ev.InterviewID == interviewID && ev.QuestionID == id {
				out = append(out, ev)
			}
		}
	}
	return out
}

func gapConcepts(gaps []domain.ConceptGap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.Concept)
	}
	return out
}

// recommendations asks the provider for coaching advice; any failure or
// unparseable payload substitutes the fixed safe fallback.
func (s Summarizer) recommendations(ctx domain.Context, iv domain.Interview, evals []domain.Evaluation, prog GapProgression) domain.Recommendations {
	in := domain.RecommendationInput{
		InterviewID:   iv.ID,
		TotalAnswers:  len(evals),
		GapsFilled:    prog.GapsFilled,
		GapsRemaining: prog.GapsRemaining,
	}
	for _, ev := range evals {
		in.AnswerSummaries = append(in.AnswerSummaries, domain.AnswerSummary{
			Score:      ev.FinalScore,
			Strengths:  ev.Strengths,
			Weaknesses: ev.Weaknesses,
		})
	}
	recs, err := s.LLM.GenerateRecommendations(ctx, in)
	if err != nil {
		slog.Warn("summarizer: recommendations failed, using fallback",
			slog.String("interview_id", iv.ID), slog.Any("error", err))
		return fallbackRecommendations
	}
	if len(recs.Strengths) == 0 && len(recs.Weaknesses) == 0 {
		return fallbackRecommendations
	}
	return recs
}
