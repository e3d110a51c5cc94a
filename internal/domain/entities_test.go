package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptPenalty(t *testing.T) {
	t.Parallel()
	cases := []struct {
		attempt int
		want    float64
	}{
		{1, 0},
		{2, -5},
		{3, -15},
		{0, 0},
		{4, -15}, // there is no attempt 4; clamp to the deepest penalty
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AttemptPenalty(c.attempt), "attempt %d", c.attempt)
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, ClampScore(-3))
	assert.Equal(t, 100.0, ClampScore(104.5))
	assert.Equal(t, 76.25, ClampScore(76.25))
}

func TestInterviewStatus_Terminal(t *testing.T) {
	t.Parallel()
	for _, s := range []InterviewStatus{StatusPlanning, StatusIdle, StatusQuestioning, StatusEvaluating, StatusFollowUp} {
		assert.False(t, s.Terminal(), string(s))
	}
	assert.True(t, StatusComplete.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestQuestion_Planned(t *testing.T) {
	t.Parallel()
	assert.False(t, Question{Text: "Tell me about a conflict."}.Planned())
	assert.True(t, Question{Text: "Explain recursion.", IdealAnswer: "Base case plus self-call."}.Planned())
}

func TestEvaluation_UnresolvedGaps(t *testing.T) {
	t.Parallel()
	e := Evaluation{Gaps: []ConceptGap{
		{Concept: "base case", Resolved: false},
		{Concept: "call stack", Resolved: true},
		{Concept: "termination", Resolved: false},
	}}
	got := e.UnresolvedGaps()
	require.Len(t, got, 2)
	assert.Equal(t, "base case", got[0].Concept)
	assert.Equal(t, "termination", got[1].Concept)
}

func TestInterview_RemainingQuestions(t *testing.T) {
	t.Parallel()
	iv := Interview{QuestionIDs: []string{"a", "b", "c"}, CurrentQuestionIndex: 1}
	assert.Equal(t, 2, iv.RemainingQuestions())
	iv.CurrentQuestionIndex = 3
	assert.Equal(t, 0, iv.RemainingQuestions())
}

func TestVoiceMetrics_OverallScore(t *testing.T) {
	t.Parallel()
	m := VoiceMetrics{Intonation: 60, Fluency: 90, Confidence: 75, SpeakingRateWPM: 140}
	assert.InDelta(t, 75.0, m.OverallScore(), 1e-9)
}

func TestMarshalEnvelope(t *testing.T) {
	t.Parallel()
	b, err := MarshalEnvelope(Outbound{Type: MsgError, Payload: ErrorPayload{Code: "INVALID_STATE", Message: "nope"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","data":{"code":"INVALID_STATE","message":"nope"}}`, string(b))
}
