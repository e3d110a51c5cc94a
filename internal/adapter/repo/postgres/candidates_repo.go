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

// CandidateRepo persists candidates.
type CandidateRepo struct{ Pool PgxPool }

var _ domain.CandidateRepository = (*CandidateRepo)(nil)

// NewCandidateRepo constructs a CandidateRepo with the given pool.
func NewCandidateRepo(p PgxPool) *CandidateRepo { return &CandidateRepo{Pool: p} }

// Create inserts a new candidate and returns its id (generates one if empty).
func (r *CandidateRepo) Create(ctx domain.Context, c domain.Candidate) (string, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Create")
	defer span.End()
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	q := `INSERT INTO candidates (id, name, email, cv_ref, created_at) VALUES ($1,$2,$3,$4,$5)`
	_, err := r.Pool.Exec(ctx, q, id, c.Name, c.Email, c.CVRef, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=candidate.create: %w", err)
	}
	return id, nil
}

// Get loads a candidate by id.
func (r *CandidateRepo) Get(ctx domain.Context, id string) (domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.Get")
	defer span.End()
	q := `SELECT id, name, email, COALESCE(cv_ref,''), created_at FROM candidates WHERE id=$1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, id), "candidate.get")
}

// GetByEmail loads a candidate by email.
func (r *CandidateRepo) GetByEmail(ctx domain.Context, email string) (domain.Candidate, error) {
	tracer := otel.Tracer("repo.candidates")
	ctx, span := tracer.Start(ctx, "candidates.GetByEmail")
	defer span.End()
	q := `SELECT id, name, email, COALESCE(cv_ref,''), created_at FROM candidates WHERE email=$1 LIMIT 1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, email), "candidate.get_by_email")
}

func (r *CandidateRepo) scanOne(row pgx.Row, op string) (domain.Candidate, error) {
	var c domain.Candidate
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CVRef, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Candidate{}, fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
		}
		return domain.Candidate{}, fmt.Errorf("op=%s: %w", op, err)
	}
	return c, nil
}
