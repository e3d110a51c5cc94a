package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// EvaluationRepo loads evaluations with their concept gaps and resolves gaps.
// Evaluations are only ever written through AnswerRepo.CreateWithEvaluation.
type EvaluationRepo struct{ Pool PgxPool }

var _ domain.EvaluationRepository = (*EvaluationRepo)(nil)

// NewEvaluationRepo constructs an EvaluationRepo with the given pool.
func NewEvaluationRepo(p PgxPool) *EvaluationRepo { return &EvaluationRepo{Pool: p} }

const evaluationColumns = `id, answer_id, question_id, interview_id, raw_score, penalty, final_score,
	similarity_score, completeness, relevance, COALESCE(sentiment,''), COALESCE(reasoning,''),
	strengths, weaknesses, improvement_suggestions, attempt_number, parent_evaluation_id, created_at`

// Get loads an evaluation by id.
func (r *EvaluationRepo) Get(ctx domain.Context, id string) (domain.Evaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.Get")
	defer span.End()
	q := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id=$1`
	return r.getOne(ctx, q, id, "evaluation.get")
}

// GetByAnswer loads the evaluation of one answer.
func (r *EvaluationRepo) GetByAnswer(ctx domain.Context, answerID string) (domain.Evaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.GetByAnswer")
	defer span.End()
	q := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE answer_id=$1`
	return r.getOne(ctx, q, answerID, "evaluation.get_by_answer")
}

func (r *EvaluationRepo) getOne(ctx domain.Context, q, arg, op string) (domain.Evaluation, error) {
	e, err := scanEvaluation(r.Pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Evaluation{}, fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
		}
		return domain.Evaluation{}, fmt.Errorf("op=%s: %w", op, err)
	}
	if err := r.attachGaps(ctx, []*domain.Evaluation{&e}); err != nil {
		return domain.Evaluation{}, fmt.Errorf("op=%s: %w", op, err)
	}
	return e, nil
}

// ListByInterview returns the interview's evaluations in creation order.
func (r *EvaluationRepo) ListByInterview(ctx domain.Context, interviewID string) ([]domain.Evaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.ListByInterview")
	defer span.End()
	q := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE interview_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, "evaluation.list_by_interview", q, interviewID)
}

// ListByQuestionIDs returns the interview's evaluations restricted to the
// given question ids, in creation order. Used to rebuild a follow-up thread.
func (r *EvaluationRepo) ListByQuestionIDs(ctx domain.Context, interviewID string, questionIDs []string) ([]domain.Evaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.ListByQuestionIDs")
	defer span.End()
	q := `SELECT ` + evaluationColumns + ` FROM evaluations
		WHERE interview_id=$1 AND question_id = ANY($2) ORDER BY created_at ASC`
	return r.list(ctx, "evaluation.list_by_question_ids", q, interviewID, questionIDs)
}

func (r *EvaluationRepo) list(ctx domain.Context, op, q string, args ...any) ([]domain.Evaluation, error) {
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=%s: %w", op, err)
	}
	defer rows.Close()
	var out []domain.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("op=%s_scan: %w", op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=%s_rows: %w", op, err)
	}
	refs := make([]*domain.Evaluation, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := r.attachGaps(ctx, refs); err != nil {
		return nil, fmt.Errorf("op=%s_gaps: %w", op, err)
	}
	return out, nil
}

// ResolveGaps flips the named gap rows to resolved. Forward-only; resolved
// rows are never flipped back, so re-resolving is harmless.
func (r *EvaluationRepo) ResolveGaps(ctx domain.Context, gapIDs []string) error {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.ResolveGaps")
	defer span.End()
	if len(gapIDs) == 0 {
		return nil
	}
	q := `UPDATE concept_gaps SET resolved = TRUE WHERE id = ANY($1)`
	if _, err := r.Pool.Exec(ctx, q, gapIDs); err != nil {
		return fmt.Errorf("op=evaluation.resolve_gaps: %w", err)
	}
	return nil
}

func (r *EvaluationRepo) attachGaps(ctx domain.Context, evals []*domain.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}
	ids := make([]string, len(evals))
	byID := make(map[string]*domain.Evaluation, len(evals))
	for i, e := range evals {
		ids[i] = e.ID
		byID[e.ID] = e
	}
	q := `SELECT id, evaluation_id, concept, severity, resolved FROM concept_gaps
		WHERE evaluation_id = ANY($1) ORDER BY ord ASC`
	rows, err := r.Pool.Query(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("gaps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g domain.ConceptGap
		var severity string
		if err := rows.Scan(&g.ID, &g.EvaluationID, &g.Concept, &severity, &g.Resolved); err != nil {
			return fmt.Errorf("gaps_scan: %w", err)
		}
		g.Severity = domain.GapSeverity(severity)
		if e, ok := byID[g.EvaluationID]; ok {
			e.Gaps = append(e.Gaps, g)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("gaps_rows: %w", err)
	}
	return nil
}

func scanEvaluation(row pgx.Row) (domain.Evaluation, error) {
	var e domain.Evaluation
	var strengths, weaknesses, suggestions []byte
	if err := row.Scan(&e.ID, &e.AnswerID, &e.QuestionID, &e.InterviewID, &e.RawScore, &e.Penalty,
		&e.FinalScore, &e.SimilarityScore, &e.Completeness, &e.Relevance, &e.Sentiment, &e.Reasoning,
		&strengths, &weaknesses, &suggestions, &e.AttemptNumber, &e.ParentEvaluationID, &e.CreatedAt); err != nil {
		return domain.Evaluation{}, err
	}
	var err error
	if e.Strengths, err = unmarshalJSON[[]string](strengths); err != nil {
		return domain.Evaluation{}, fmt.Errorf("strengths %w", err)
	}
	if e.Weaknesses, err = unmarshalJSON[[]string](weaknesses); err != nil {
		return domain.Evaluation{}, fmt.Errorf("weaknesses %w", err)
	}
	if e.ImprovementSuggestions, err = unmarshalJSON[[]string](suggestions); err != nil {
		return domain.Evaluation{}, fmt.Errorf("improvement_suggestions %w", err)
	}
	return e, nil
}
