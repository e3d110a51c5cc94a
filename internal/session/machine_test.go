package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()
	allowed := []struct{ from, to domain.InterviewStatus }{
		{domain.StatusPlanning, domain.StatusIdle},
		{domain.StatusIdle, domain.StatusQuestioning},
		{domain.StatusQuestioning, domain.StatusEvaluating},
		{domain.StatusEvaluating, domain.StatusFollowUp},
		{domain.StatusEvaluating, domain.StatusQuestioning},
		{domain.StatusEvaluating, domain.StatusComplete},
		{domain.StatusFollowUp, domain.StatusEvaluating},
		{domain.StatusFollowUp, domain.StatusCancelled},
		{domain.StatusQuestioning, domain.StatusCancelled},
	}
	for _, c := range allowed {
		assert.True(t, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}

	denied := []struct{ from, to domain.InterviewStatus }{
		{domain.StatusIdle, domain.StatusEvaluating},
		{domain.StatusQuestioning, domain.StatusComplete},
		{domain.StatusQuestioning, domain.StatusFollowUp},
		{domain.StatusFollowUp, domain.StatusQuestioning},
		{domain.StatusFollowUp, domain.StatusComplete},
		{domain.StatusComplete, domain.StatusQuestioning},
		{domain.StatusCancelled, domain.StatusIdle},
		{domain.StatusComplete, domain.StatusCancelled},
	}
	for _, c := range denied {
		assert.False(t, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTransition(t *testing.T) {
	t.Parallel()
	iv := domain.Interview{Status: domain.StatusIdle}
	require.NoError(t, Transition(&iv, domain.StatusQuestioning))
	assert.Equal(t, domain.StatusQuestioning, iv.Status)

	err := Transition(&iv, domain.StatusComplete)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.StatusQuestioning, iv.Status)
}
