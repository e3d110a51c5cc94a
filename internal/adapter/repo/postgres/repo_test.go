package postgres_test

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// anyArgs returns n pgxmock.AnyArg matchers; pgxmock requires the expected
// argument count to match even when the values are irrelevant to the test.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	m, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, m.ExpectationsWereMet()) })
	return m
}

func TestCandidateRepo_CreateGeneratesID(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewCandidateRepo(m)

	m.ExpectExec(`INSERT INTO candidates`).
		WithArgs(pgxmock.AnyArg(), "Ada", "ada@example.com", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := repo.Create(context.Background(), domain.Candidate{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCandidateRepo_GetNotFound(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewCandidateRepo(m)

	m.ExpectQuery(`SELECT .+ FROM candidates WHERE id=\$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "cv_ref", "created_at"}))

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFollowUpRepo_ListByParent(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewFollowUpRepo(m)
	now := time.Now().UTC()

	m.ExpectQuery(`SELECT .+ FROM follow_up_questions`).
		WithArgs("q-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "parent_question_id", "interview_id", "text", "generated_reason", "order_in_sequence", "created_at",
		}).
			AddRow("fu-1", "q-1", "iv-1", "What about the base case?", "gap: base case", 1, now).
			AddRow("fu-2", "q-1", "iv-1", "And the call stack?", "gap: call stack", 2, now))

	got, err := repo.ListByParent(context.Background(), "q-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].OrderInSequence)
	assert.Equal(t, "fu-2", got[1].ID)
}

func TestInterviewRepo_UpdateNotFound(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewInterviewRepo(m)

	m.ExpectExec(`UPDATE interviews SET`).
		WithArgs("iv-1", string(domain.StatusQuestioning), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), domain.Interview{ID: "iv-1", Status: domain.StatusQuestioning})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInterviewRepo_GetRoundTripsPlanMetadata(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewInterviewRepo(m)
	now := time.Now().UTC()

	m.ExpectQuery(`SELECT .+ FROM interviews WHERE id=\$1`).
		WithArgs("iv-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "candidate_id", "cv_analysis_id", "status", "question_ids", "answer_ids",
			"current_question_index", "adaptive_follow_ups", "current_parent_question_id",
			"current_follow_up_count", "plan_metadata", "started_at", "completed_at", "created_at", "updated_at",
		}).AddRow("iv-1", "c-1", "cv-1", string(domain.StatusIdle), []string{"q-1", "q-2"}, []string{},
			0, []string{}, "", 0, []byte(`{"strategy":"adaptive_v1","n":2}`), nil, nil, now, now))

	iv, err := repo.Get(context.Background(), "iv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, iv.Status)
	assert.Equal(t, []string{"q-1", "q-2"}, iv.QuestionIDs)
	assert.Equal(t, 2, iv.PlanMetadata.N)
	assert.Equal(t, "adaptive_v1", iv.PlanMetadata.Strategy)
}

func TestAnswerRepo_CreateWithEvaluation_CommitsBothRows(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewAnswerRepo(m)

	m.ExpectBegin()
	m.ExpectExec(`INSERT INTO answers`).WithArgs(anyArgs(11)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	m.ExpectExec(`INSERT INTO evaluations`).WithArgs(anyArgs(18)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	m.ExpectExec(`INSERT INTO concept_gaps`).WithArgs(anyArgs(6)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	m.ExpectCommit()
	m.ExpectRollback()

	answerID, evalID, err := repo.CreateWithEvaluation(context.Background(),
		domain.Answer{InterviewID: "iv-1", QuestionID: "q-1", CandidateID: "c-1", Text: "It calls itself."},
		domain.Evaluation{
			QuestionID:  "q-1",
			InterviewID: "iv-1",
			RawScore:    45,
			FinalScore:  45,
			Gaps:        []domain.ConceptGap{{Concept: "base case", Severity: domain.SeverityModerate}},
		})
	require.NoError(t, err)
	assert.NotEmpty(t, answerID)
	assert.NotEmpty(t, evalID)
}

func TestAnswerRepo_CreateWithEvaluation_RollsBackOnEvaluationFailure(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewAnswerRepo(m)

	m.ExpectBegin()
	m.ExpectExec(`INSERT INTO answers`).WithArgs(anyArgs(11)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	m.ExpectExec(`INSERT INTO evaluations`).WithArgs(anyArgs(18)...).WillReturnError(assert.AnError)
	m.ExpectRollback()

	_, _, err := repo.CreateWithEvaluation(context.Background(),
		domain.Answer{InterviewID: "iv-1", QuestionID: "q-1"},
		domain.Evaluation{QuestionID: "q-1", InterviewID: "iv-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=answer.create_with_evaluation")
}

func TestEvaluationRepo_ListByQuestionIDs_AttachesGaps(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewEvaluationRepo(m)
	now := time.Now().UTC()
	sim := 0.42

	m.ExpectQuery(`SELECT .+ FROM evaluations`).
		WithArgs("iv-1", []string{"q-1"}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "answer_id", "question_id", "interview_id", "raw_score", "penalty", "final_score",
			"similarity_score", "completeness", "relevance", "sentiment", "reasoning",
			"strengths", "weaknesses", "improvement_suggestions", "attempt_number",
			"parent_evaluation_id", "created_at",
		}).AddRow("e-1", "a-1", "q-1", "iv-1", 45.0, 0.0, 45.0, &sim, 40.0, 80.0, "neutral", "thin answer",
			[]byte(`["clear"]`), []byte(`["shallow"]`), []byte(`[]`), 1, (*string)(nil), now))

	m.ExpectQuery(`SELECT .+ FROM concept_gaps`).
		WithArgs([]string{"e-1"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "evaluation_id", "concept", "severity", "resolved"}).
			AddRow("g-1", "e-1", "base case", string(domain.SeverityModerate), false).
			AddRow("g-2", "e-1", "call stack", string(domain.SeverityMinor), true))

	got, err := repo.ListByQuestionIDs(context.Background(), "iv-1", []string{"q-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Gaps, 2)
	assert.Equal(t, "base case", got[0].Gaps[0].Concept)
	assert.True(t, got[0].Gaps[1].Resolved)
	require.NotNil(t, got[0].SimilarityScore)
	assert.InDelta(t, 0.42, *got[0].SimilarityScore, 1e-9)
}

func TestEvaluationRepo_ResolveGaps(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewEvaluationRepo(m)

	m.ExpectExec(`UPDATE concept_gaps SET resolved = TRUE`).
		WithArgs([]string{"g-1", "g-2"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	require.NoError(t, repo.ResolveGaps(context.Background(), []string{"g-1", "g-2"}))
}

func TestEvaluationRepo_ResolveGaps_EmptyIsNoop(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewEvaluationRepo(m)
	require.NoError(t, repo.ResolveGaps(context.Background(), nil))
}

func TestQuestionRepo_ListExemplars_FiltersBySkillAndType(t *testing.T) {
	m := newPool(t)
	repo := postgres.NewQuestionRepo(m)
	now := time.Now().UTC()

	m.ExpectQuery(`SELECT .+ FROM questions WHERE ideal_answer`).
		WithArgs("Go", string(domain.QuestionTechnical), 5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "text", "type", "difficulty", "skills", "tags", "ideal_answer",
			"rationale", "version", "embedding", "created_at",
		}).AddRow("q-9", "What is a goroutine?", string(domain.QuestionTechnical), string(domain.DifficultyEasy),
			[]string{"Go"}, []string{}, "A goroutine is a lightweight thread.", "", 1, []float32(nil), now))

	got, err := repo.ListExemplars(context.Background(), domain.ExemplarFilter{
		Skill: "Go",
		Type:  domain.QuestionTechnical,
	}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "q-9", got[0].ID)
	assert.True(t, got[0].Planned())
}
