package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

func simPtr(v float64) *float64 { return &v }

func evalWithGaps(concepts ...string) domain.Evaluation {
	ev := domain.Evaluation{SimilarityScore: simPtr(0.4)}
	for _, c := range concepts {
		ev.Gaps = append(ev.Gaps, domain.ConceptGap{Concept: c})
	}
	return ev
}

func TestDecide_MaxFollowUpsReached(t *testing.T) {
	t.Parallel()
	d := usecase.Decide(3, evalWithGaps("base case"), nil)
	assert.False(t, d.NeedsFollowUp)
	assert.Equal(t, "max follow-ups reached", d.Reason)
	assert.Equal(t, 3, d.FollowUpCount)
	assert.Empty(t, d.CumulativeGaps)
}

func TestDecide_HighSimilarityAdvances(t *testing.T) {
	t.Parallel()
	ev := evalWithGaps("base case")
	ev.SimilarityScore = simPtr(0.85)
	d := usecase.Decide(1, ev, nil)
	assert.False(t, d.NeedsFollowUp)
	assert.Equal(t, "similarity >= 0.8", d.Reason)
}

func TestDecide_SimilarityExactlyAtThreshold(t *testing.T) {
	t.Parallel()
	// The threshold is inclusive: exactly 0.8 means no follow-up.
	ev := evalWithGaps("base case")
	ev.SimilarityScore = simPtr(0.8)
	d := usecase.Decide(0, ev, nil)
	assert.False(t, d.NeedsFollowUp)
	assert.Equal(t, "similarity >= 0.8", d.Reason)
}

func TestDecide_NoGaps(t *testing.T) {
	t.Parallel()
	ev := domain.Evaluation{SimilarityScore: simPtr(0.5)}
	d := usecase.Decide(0, ev, nil)
	assert.False(t, d.NeedsFollowUp)
	assert.Equal(t, "no gaps", d.Reason)
}

func TestDecide_NilSimilarityWithNoGapsAdvances(t *testing.T) {
	t.Parallel()
	// Behavioral answers: similarity nil, no gaps detected.
	d := usecase.Decide(0, domain.Evaluation{}, nil)
	assert.False(t, d.NeedsFollowUp)
	assert.Equal(t, "no gaps", d.Reason)
}

func TestDecide_ResolvedGapsDoNotCount(t *testing.T) {
	t.Parallel()
	ev := domain.Evaluation{
		SimilarityScore: simPtr(0.4),
		Gaps: []domain.ConceptGap{
			{Concept: "base case", Resolved: true},
			{Concept: "call stack", Resolved: true},
		},
	}
	d := usecase.Decide(1, ev, nil)
	assert.False(t, d.NeedsFollowUp)
	assert.Equal(t, "no gaps", d.Reason)
}

func TestDecide_CumulativeGapsUnionPreservesOrder(t *testing.T) {
	t.Parallel()
	latest := evalWithGaps("base case", "call stack")
	prior := []domain.Evaluation{
		evalWithGaps("call stack", "termination"),
		evalWithGaps("memoization"),
	}
	d := usecase.Decide(1, latest, prior)
	assert.True(t, d.NeedsFollowUp)
	assert.Equal(t, 1, d.FollowUpCount)
	assert.Equal(t, []string{"base case", "call stack", "termination", "memoization"}, d.CumulativeGaps)
	assert.Equal(t, "4 missing concepts: base case, call stack, termination, memoization", d.Reason)
}

func TestDecide_Deterministic(t *testing.T) {
	t.Parallel()
	latest := evalWithGaps("base case")
	prior := []domain.Evaluation{evalWithGaps("call stack")}
	first := usecase.Decide(1, latest, prior)
	second := usecase.Decide(1, latest, prior)
	assert.Equal(t, first, second)
}
