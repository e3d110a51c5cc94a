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

// FollowUpRepo persists adaptive follow-up questions.
type FollowUpRepo struct{ Pool PgxPool }

var _ domain.FollowUpRepository = (*FollowUpRepo)(nil)

// NewFollowUpRepo constructs a FollowUpRepo with the given pool.
func NewFollowUpRepo(p PgxPool) *FollowUpRepo { return &FollowUpRepo{Pool: p} }

const followUpColumns = `id, parent_question_id, interview_id, text, COALESCE(generated_reason,''),
	order_in_sequence, created_at`

// Create inserts a follow-up and returns its id (generates one if empty).
func (r *FollowUpRepo) Create(ctx domain.Context, f domain.FollowUpQuestion) (string, error) {
	tracer := otel.Tracer("repo.followups")
	ctx, span := tracer.Start(ctx, "followups.Create")
	defer span.End()
	id := f.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO follow_up_questions (id, parent_question_id, interview_id, text,
		generated_reason, order_in_sequence, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.Pool.Exec(ctx, q, id, f.ParentQuestionID, f.InterviewID, f.Text,
		f.GeneratedReason, f.OrderInSequence, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=followup.create: %w", err)
	}
	return id, nil
}

// Get loads a follow-up by id.
func (r *FollowUpRepo) Get(ctx domain.Context, id string) (domain.FollowUpQuestion, error) {
	tracer := otel.Tracer("repo.followups")
	ctx, span := tracer.Start(ctx, "followups.Get")
	defer span.End()
	q := `SELECT ` + followUpColumns + ` FROM follow_up_questions WHERE id=$1`
	f, err := scanFollowUp(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FollowUpQuestion{}, fmt.Errorf("op=followup.get: %w", domain.ErrNotFound)
		}
		return domain.FollowUpQuestion{}, fmt.Errorf("op=followup.get: %w", err)
	}
	return f, nil
}

// ListByParent returns the follow-ups of one parent question in sequence order.
func (r *FollowUpRepo) ListByParent(ctx domain.Context, parentQuestionID string) ([]domain.FollowUpQuestion, error) {
	tracer := otel.Tracer("repo.followups")
	ctx, span := tracer.Start(ctx, "followups.ListByParent")
	defer span.End()
	q := `SELECT ` + followUpColumns + ` FROM follow_up_questions
		WHERE parent_question_id=$1 ORDER BY order_in_sequence ASC`
	rows, err := r.Pool.Query(ctx, q, parentQuestionID)
	if err != nil {
		return nil, fmt.Errorf("op=followup.list_by_parent: %w", err)
	}
	defer rows.Close()
	var out []domain.FollowUpQuestion
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("op=followup.list_by_parent_scan: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=followup.list_by_parent_rows: %w", err)
	}
	return out, nil
}

// CountByParent returns how many follow-ups exist for one parent question.
func (r *FollowUpRepo) CountByParent(ctx domain.Context, parentQuestionID string) (int, error) {
	tracer := otel.Tracer("repo.followups")
	ctx, span := tracer.Start(ctx, "followups.CountByParent")
	defer span.End()
	var count int
	row := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM follow_up_questions WHERE parent_question_id=$1`, parentQuestionID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("op=followup.count_by_parent: %w", err)
	}
	return count, nil
}

func scanFollowUp(row pgx.Row) (domain.FollowUpQuestion, error) {
	var f domain.FollowUpQuestion
	if err := row.Scan(&f.ID, &f.ParentQuestionID, &f.InterviewID, &f.Text,
		&f.GeneratedReason, &f.OrderInSequence, &f.CreatedAt); err != nil {
		return domain.FollowUpQuestion{}, err
	}
	return f, nil
}
