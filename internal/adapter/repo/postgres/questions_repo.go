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

// QuestionRepo persists planned questions.
type QuestionRepo struct{ Pool PgxPool }

var _ domain.QuestionRepository = (*QuestionRepo)(nil)

// NewQuestionRepo constructs a QuestionRepo with the given pool.
func NewQuestionRepo(p PgxPool) *QuestionRepo { return &QuestionRepo{Pool: p} }

const questionColumns = `id, text, type, difficulty, skills, tags, COALESCE(ideal_answer,''),
	COALESCE(rationale,''), version, embedding, created_at`

// Create inserts a question and returns its id (generates one if empty).
func (r *QuestionRepo) Create(ctx domain.Context, q domain.Question) (string, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Create")
	defer span.End()
	id := q.ID
	if id == "" {
		id = uuid.New().String()
	}
	version := q.Version
	if version == 0 {
		version = 1
	}
	sql := `INSERT INTO questions (id, text, type, difficulty, skills, tags, ideal_answer,
		rationale, version, embedding, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.Pool.Exec(ctx, sql, id, q.Text, string(q.Type), string(q.Difficulty),
		q.Skills, q.Tags, q.IdealAnswer, q.Rationale, version, q.Embedding, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=question.create: %w", err)
	}
	return id, nil
}

// Get loads a question by id.
func (r *QuestionRepo) Get(ctx domain.Context, id string) (domain.Question, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Get")
	defer span.End()
	sql := `SELECT ` + questionColumns + ` FROM questions WHERE id=$1`
	q, err := scanQuestion(r.Pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Question{}, fmt.Errorf("op=question.get: %w", domain.ErrNotFound)
		}
		return domain.Question{}, fmt.Errorf("op=question.get: %w", err)
	}
	return q, nil
}

// Delete removes a question. Used for plan compensation on partial failure.
func (r *QuestionRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Delete")
	defer span.End()
	if _, err := r.Pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id); err != nil {
		return fmt.Errorf("op=question.delete: %w", err)
	}
	return nil
}

// ListExemplars returns up to limit planned questions matching the filter,
// newest first. Serves as the retrieval fallback when no vector index runs.
func (r *QuestionRepo) ListExemplars(ctx domain.Context, f domain.ExemplarFilter, limit int) ([]domain.Question, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.ListExemplars")
	defer span.End()

	sql := `SELECT ` + questionColumns + ` FROM questions WHERE ideal_answer <> ''`
	args := []any{}
	n := 0
	if f.Skill != "" {
		n++
		sql += fmt.Sprintf(" AND $%d = ANY(skills)", n)
		args = append(args, f.Skill)
	}
	if f.Type != "" {
		n++
		sql += fmt.Sprintf(" AND type = $%d", n)
		args = append(args, string(f.Type))
	}
	if f.Difficulty != "" {
		n++
		sql += fmt.Sprintf(" AND difficulty = $%d", n)
		args = append(args, string(f.Difficulty))
	}
	n++
	sql += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", n)
	args = append(args, limit)

	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("op=question.list_exemplars: %w", err)
	}
	defer rows.Close()
	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("op=question.list_exemplars_scan: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=question.list_exemplars_rows: %w", err)
	}
	return out, nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	var typ, diff string
	if err := row.Scan(&q.ID, &q.Text, &typ, &diff, &q.Skills, &q.Tags,
		&q.IdealAnswer, &q.Rationale, &q.Version, &q.Embedding, &q.CreatedAt); err != nil {
		return domain.Question{}, err
	}
	q.Type = domain.QuestionType(typ)
	q.Difficulty = domain.Difficulty(diff)
	return q, nil
}
