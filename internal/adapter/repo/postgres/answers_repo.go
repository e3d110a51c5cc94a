package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// AnswerRepo persists answers. The answer and its evaluation are written in
// one transaction so a half-recorded attempt can never be observed.
type AnswerRepo struct{ Pool PgxPool }

var _ domain.AnswerRepository = (*AnswerRepo)(nil)

// NewAnswerRepo constructs an AnswerRepo with the given pool.
func NewAnswerRepo(p PgxPool) *AnswerRepo { return &AnswerRepo{Pool: p} }

const answerColumns = `id, interview_id, question_id, candidate_id, text, is_voice,
	COALESCE(audio_ref,''), duration_seconds, voice_metrics, created_at, evaluated_at`

// Get loads an answer by id.
func (r *AnswerRepo) Get(ctx domain.Context, id string) (domain.Answer, error) {
	tracer := otel.Tracer("repo.answers")
	ctx, span := tracer.Start(ctx, "answers.Get")
	defer span.End()
	q := `SELECT ` + answerColumns + ` FROM answers WHERE id=$1`
	a, err := scanAnswer(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Answer{}, fmt.Errorf("op=answer.get: %w", domain.ErrNotFound)
		}
		return domain.Answer{}, fmt.Errorf("op=answer.get: %w", err)
	}
	return a, nil
}

// ListByInterview returns the interview's answers in creation order.
func (r *AnswerRepo) ListByInterview(ctx domain.Context, interviewID string) ([]domain.Answer, error) {
	tracer := otel.Tracer("repo.answers")
	ctx, span := tracer.Start(ctx, "answers.ListByInterview")
	defer span.End()
	q := `SELECT ` + answerColumns + ` FROM answers WHERE interview_id=$1 ORDER BY created_at ASC`
	rows, err := r.Pool.Query(ctx, q, interviewID)
	if err != nil {
		return nil, fmt.Errorf("op=answer.list_by_interview: %w", err)
	}
	defer rows.Close()
	var out []domain.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("op=answer.list_by_interview_scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=answer.list_by_interview_rows: %w", err)
	}
	return out, nil
}

// CreateWithEvaluation inserts the answer, its evaluation, and the detected
// concept gaps atomically, returning both generated ids.
func (r *AnswerRepo) CreateWithEvaluation(ctx domain.Context, a domain.Answer, e domain.Evaluation) (string, string, error) {
	tracer := otel.Tracer("repo.answers")
	ctx, span := tracer.Start(ctx, "answers.CreateWithEvaluation")
	defer span.End()

	answerID := a.ID
	if answerID == "" {
		answerID = uuid.New().String()
	}
	evalID := e.ID
	if evalID == "" {
		evalID = uuid.New().String()
	}
	now := time.Now().UTC()

	voiceMetrics, err := marshalJSON(a.VoiceMetrics)
	if err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: %w", err)
	}
	strengths, err := marshalJSON(e.Strengths)
	if err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: %w", err)
	}
	weaknesses, err := marshalJSON(e.Weaknesses)
	if err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: %w", err)
	}
	suggestions, err := marshalJSON(e.ImprovementSuggestions)
	if err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: %w", err)
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `INSERT INTO answers (id, interview_id, question_id, candidate_id, text,
		is_voice, audio_ref, duration_seconds, voice_metrics, created_at, evaluated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		answerID, a.InterviewID, a.QuestionID, a.CandidateID, a.Text,
		a.IsVoice, a.AudioRef, a.DurationSeconds, voiceMetrics, now, now)
	if err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: answer: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO evaluations (id, answer_id, question_id, interview_id,
		raw_score, penalty, final_score, similarity_score, completeness, relevance, sentiment,
		reasoning, strengths, weaknesses, improvement_suggestions, attempt_number,
		parent_evaluation_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		evalID, answerID, e.QuestionID, e.InterviewID, e.RawScore, e.Penalty, e.FinalScore,
		e.SimilarityScore, e.Completeness, e.Relevance, e.Sentiment, e.Reasoning,
		strengths, weaknesses, suggestions, e.AttemptNumber, e.ParentEvaluationID, now)
	if err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: evaluation: %w", err)
	}

	for i, g := range e.Gaps {
		gapID := g.ID
		if gapID == "" {
			gapID = uuid.New().String()
		}
		_, err = tx.Exec(ctx, `INSERT INTO concept_gaps (id, evaluation_id, concept, severity, resolved, ord)
			VALUES ($1,$2,$3,$4,$5,$6)`, gapID, evalID, g.Concept, string(g.Severity), g.Resolved, i)
		if err != nil {
			return "", "", fmt.Errorf("op=answer.create_with_evaluation: gap: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", "", fmt.Errorf("op=answer.create_with_evaluation: commit: %w", err)
	}
	return answerID, evalID, nil
}

func scanAnswer(row pgx.Row) (domain.Answer, error) {
	var a domain.Answer
	var voiceMetrics []byte
	if err := row.Scan(&a.ID, &a.InterviewID, &a.QuestionID, &a.CandidateID, &a.Text,
		&a.IsVoice, &a.AudioRef, &a.DurationSeconds, &voiceMetrics, &a.CreatedAt, &a.EvaluatedAt); err != nil {
		return domain.Answer{}, err
	}
	var err error
	if a.VoiceMetrics, err = unmarshalJSON[*domain.VoiceMetrics](voiceMetrics); err != nil {
		return domain.Answer{}, fmt.Errorf("voice_metrics %w", err)
	}
	return a, nil
}
