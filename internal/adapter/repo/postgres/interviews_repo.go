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

// InterviewRepo persists the interview aggregate. Plan metadata is stored as
// JSONB, the question and follow-up id lists as text[].
type InterviewRepo struct{ Pool PgxPool }

var _ domain.InterviewRepository = (*InterviewRepo)(nil)

// NewInterviewRepo constructs an InterviewRepo with the given pool.
func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

const interviewColumns = `id, candidate_id, cv_analysis_id, status, question_ids, answer_ids,
	current_question_index, adaptive_follow_ups, COALESCE(current_parent_question_id,''),
	current_follow_up_count, plan_metadata, started_at, completed_at, created_at, updated_at`

// Create inserts an interview and returns its id (generates one if empty).
func (r *InterviewRepo) Create(ctx domain.Context, iv domain.Interview) (string, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Create")
	defer span.End()
	id := iv.ID
	if id == "" {
		id = uuid.New().String()
	}
	meta, err := marshalJSON(iv.PlanMetadata)
	if err != nil {
		return "", fmt.Errorf("op=interview.create: %w", err)
	}
	now := time.Now().UTC()
	q := `INSERT INTO interviews (id, candidate_id, cv_analysis_id, status, question_ids, answer_ids,
		current_question_index, adaptive_follow_ups, current_parent_question_id, current_follow_up_count,
		plan_metadata, started_at, completed_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err = r.Pool.Exec(ctx, q, id, iv.CandidateID, iv.CVAnalysisID, string(iv.Status),
		iv.QuestionIDs, iv.AnswerIDs, iv.CurrentQuestionIndex, iv.AdaptiveFollowUps,
		iv.CurrentParentQuestionID, iv.CurrentFollowUpCount, meta, iv.StartedAt, iv.CompletedAt, now, now)
	if err != nil {
		return "", fmt.Errorf("op=interview.create: %w", err)
	}
	return id, nil
}

// Get loads an interview by id.
func (r *InterviewRepo) Get(ctx domain.Context, id string) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Get")
	defer span.End()
	q := `SELECT ` + interviewColumns + ` FROM interviews WHERE id=$1`
	iv, err := scanInterview(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Interview{}, fmt.Errorf("op=interview.get: %w", domain.ErrNotFound)
		}
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", err)
	}
	return iv, nil
}

// Update replaces the mutable fields of the aggregate.
func (r *InterviewRepo) Update(ctx domain.Context, iv domain.Interview) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Update")
	defer span.End()
	meta, err := marshalJSON(iv.PlanMetadata)
	if err != nil {
		return fmt.Errorf("op=interview.update: %w", err)
	}
	q := `UPDATE interviews SET status=$2, question_ids=$3, answer_ids=$4, current_question_index=$5,
		adaptive_follow_ups=$6, current_parent_question_id=$7, current_follow_up_count=$8,
		plan_metadata=$9, started_at=$10, completed_at=$11, updated_at=$12 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, iv.ID, string(iv.Status), iv.QuestionIDs, iv.AnswerIDs,
		iv.CurrentQuestionIndex, iv.AdaptiveFollowUps, iv.CurrentParentQuestionID,
		iv.CurrentFollowUpCount, meta, iv.StartedAt, iv.CompletedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=interview.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=interview.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes an interview. Used for plan compensation on partial failure.
func (r *InterviewRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Delete")
	defer span.End()
	if _, err := r.Pool.Exec(ctx, `DELETE FROM interviews WHERE id=$1`, id); err != nil {
		return fmt.Errorf("op=interview.delete: %w", err)
	}
	return nil
}

func scanInterview(row pgx.Row) (domain.Interview, error) {
	var iv domain.Interview
	var status string
	var meta []byte
	if err := row.Scan(&iv.ID, &iv.CandidateID, &iv.CVAnalysisID, &status, &iv.QuestionIDs,
		&iv.AnswerIDs, &iv.CurrentQuestionIndex, &iv.AdaptiveFollowUps, &iv.CurrentParentQuestionID,
		&iv.CurrentFollowUpCount, &meta, &iv.StartedAt, &iv.CompletedAt, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
		return domain.Interview{}, err
	}
	iv.Status = domain.InterviewStatus(status)
	var err error
	if iv.PlanMetadata, err = unmarshalJSON[domain.PlanMetadata](meta); err != nil {
		return domain.Interview{}, fmt.Errorf("plan_metadata %w", err)
	}
	return iv, nil
}
