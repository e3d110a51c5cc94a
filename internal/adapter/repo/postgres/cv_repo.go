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

// CVAnalysisRepo persists CV analysis profiles. Skills and suggested topics
// are stored as JSONB, the embedding as a real[] column.
type CVAnalysisRepo struct{ Pool PgxPool }

var _ domain.CVAnalysisRepository = (*CVAnalysisRepo)(nil)

// NewCVAnalysisRepo constructs a CVAnalysisRepo with the given pool.
func NewCVAnalysisRepo(p PgxPool) *CVAnalysisRepo { return &CVAnalysisRepo{Pool: p} }

const cvColumns = `id, candidate_id, text, skills, experience_years, COALESCE(education_level,''),
	suggested_topics, COALESCE(suggested_level,''), COALESCE(summary,''), embedding, created_at`

// Create inserts an analysis and returns its id (generates one if empty).
func (r *CVAnalysisRepo) Create(ctx domain.Context, a domain.CVAnalysis) (string, error) {
	tracer := otel.Tracer("repo.cv_analyses")
	ctx, span := tracer.Start(ctx, "cv_analyses.Create")
	defer span.End()
	id := a.ID
	if id == "" {
		id = uuid.New().String()
	}
	skills, err := marshalJSON(a.Skills)
	if err != nil {
		return "", fmt.Errorf("op=cv.create: %w", err)
	}
	topics, err := marshalJSON(a.SuggestedTopics)
	if err != nil {
		return "", fmt.Errorf("op=cv.create: %w", err)
	}
	q := `INSERT INTO cv_analyses (id, candidate_id, text, skills, experience_years, education_level,
		suggested_topics, suggested_level, summary, embedding, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = r.Pool.Exec(ctx, q, id, a.CandidateID, a.Text, skills, a.ExperienceYears,
		a.EducationLevel, topics, string(a.SuggestedLevel), a.Summary, a.Embedding, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=cv.create: %w", err)
	}
	return id, nil
}

// Get loads an analysis by id.
func (r *CVAnalysisRepo) Get(ctx domain.Context, id string) (domain.CVAnalysis, error) {
	tracer := otel.Tracer("repo.cv_analyses")
	ctx, span := tracer.Start(ctx, "cv_analyses.Get")
	defer span.End()
	q := `SELECT ` + cvColumns + ` FROM cv_analyses WHERE id=$1`
	return scanCV(r.Pool.QueryRow(ctx, q, id), "cv.get")
}

// LatestByCandidate loads the most recent analysis for the candidate.
func (r *CVAnalysisRepo) LatestByCandidate(ctx domain.Context, candidateID string) (domain.CVAnalysis, error) {
	tracer := otel.Tracer("repo.cv_analyses")
	ctx, span := tracer.Start(ctx, "cv_analyses.LatestByCandidate")
	defer span.End()
	q := `SELECT ` + cvColumns + ` FROM cv_analyses WHERE candidate_id=$1 ORDER BY created_at DESC LIMIT 1`
	return scanCV(r.Pool.QueryRow(ctx, q, candidateID), "cv.latest_by_candidate")
}

func scanCV(row pgx.Row, op string) (domain.CVAnalysis, error) {
	var a domain.CVAnalysis
	var skills, topics []byte
	var level string
	if err := row.Scan(&a.ID, &a.CandidateID, &a.Text, &skills, &a.ExperienceYears,
		&a.EducationLevel, &topics, &level, &a.Summary, &a.Embedding, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CVAnalysis{}, fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
		}
		return domain.CVAnalysis{}, fmt.Errorf("op=%s: %w", op, err)
	}
	var err error
	if a.Skills, err = unmarshalJSON[[]domain.Skill](skills); err != nil {
		return domain.CVAnalysis{}, fmt.Errorf("op=%s: skills %w", op, err)
	}
	if a.SuggestedTopics, err = unmarshalJSON[[]string](topics); err != nil {
		return domain.CVAnalysis{}, fmt.Errorf("op=%s: topics %w", op, err)
	}
	a.SuggestedLevel = domain.Difficulty(level)
	return a, nil
}
