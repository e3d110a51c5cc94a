package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/domain/mocks"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

const idealRecursion = "A recursive function needs a base case, uses the call stack, and guarantees termination through smaller subproblems."

func TestEvaluator_EmptyAnswer_ScoresZeroWithoutLLM(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMProvider{}
	emb := &mocks.MockEmbeddingService{}
	ev := usecase.NewEvaluator(llm, emb)

	got, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
		InterviewID:  "iv-1",
		QuestionID:   "q-1",
		QuestionText: "Explain recursion.",
		IdealAnswer:  idealRecursion,
		Answer:       domain.Answer{ID: "a-1", Text: "   "},
		Attempt:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.RawScore)
	assert.Equal(t, -5.0, got.Penalty)
	assert.Equal(t, 0.0, got.FinalScore)
	// A reference answer exists, so similarity is recorded at the floor
	// rather than left uncomputed.
	require.NotNil(t, got.SimilarityScore)
	assert.Equal(t, 0.01, *got.SimilarityScore)
	llm.AssertNotCalled(t, "EvaluateAnswer", mock.Anything, mock.Anything)
	emb.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestEvaluator_EmptyAnswerNoReference_SimilarityStaysNil(t *testing.T) {
	t.Parallel()
	ev := usecase.NewEvaluator(&mocks.MockLLMProvider{}, &mocks.MockEmbeddingService{})

	got, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
		InterviewID:  "iv-1",
		QuestionID:   "q-1",
		QuestionText: "Tell me about a past conflict.",
		Answer:       domain.Answer{ID: "a-1", Text: ""},
		Attempt:      1,
	})
	require.NoError(t, err)
	assert.Nil(t, got.SimilarityScore)
}

func TestEvaluator_FullPipeline_SimilarityAndGaps(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMProvider{}
	emb := &mocks.MockEmbeddingService{}

	answerText := "It is when something refers to itself."
	llm.On("EvaluateAnswer", mock.Anything, mock.MatchedBy(func(in domain.EvaluateAnswerInput) bool {
		return in.AnswerText == answerText && in.IdealAnswer == idealRecursion
	})).Return(domain.RawEvaluation{
		Score: 48, Completeness: 0.4, Relevance: 0.7, Sentiment: "neutral",
		Strengths:  []string{"intuition is right"},
		Weaknesses: []string{"no mechanics"},
		Reasoning:  "Definition only, no mechanism.",
	}, nil)

	emb.On("Embed", mock.Anything, answerText).Return([]float32{1, 0}, nil)
	emb.On("Embed", mock.Anything, idealRecursion).Return([]float32{0.5, 0.5}, nil)
	emb.On("CosineSimilarity", []float32{1, 0}, []float32{0.5, 0.5}).Return(0.45)

	llm.On("DetectConceptGaps", mock.Anything, mock.MatchedBy(func(in domain.GapDetectionInput) bool {
		return len(in.CandidateKeywords) > 3
	})).Return(domain.GapDetection{
		Concepts:  []string{"base case", "call stack"},
		Confirmed: true,
		Severity:  domain.SeverityModerate,
	}, nil)

	ev := usecase.NewEvaluator(llm, emb)
	got, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
		InterviewID:  "iv-1",
		QuestionID:   "q-1",
		QuestionText: "Explain recursion.",
		IdealAnswer:  idealRecursion,
		Answer:       domain.Answer{ID: "a-1", Text: answerText},
		Attempt:      1,
	})
	require.NoError(t, err)
	require.NotNil(t, got.SimilarityScore)
	assert.InDelta(t, 0.45, *got.SimilarityScore, 1e-9)
	assert.Equal(t, 48.0, got.FinalScore)
	require.Len(t, got.Gaps, 2)
	assert.Equal(t, "base case", got.Gaps[0].Concept)
	assert.Equal(t, domain.SeverityModerate, got.Gaps[0].Severity)
	assert.False(t, got.Gaps[0].Resolved)
	assert.Equal(t, got.ID, got.Gaps[0].EvaluationID)
	llm.AssertExpectations(t)
	emb.AssertExpectations(t)
}

func TestEvaluator_ZeroSimilarityRemappedToSentinel(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMProvider{}
	emb := &mocks.MockEmbeddingService{}

	llm.On("EvaluateAnswer", mock.Anything, mock.Anything).Return(domain.RawEvaluation{Score: 10}, nil)
	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0}, nil)
	emb.On("CosineSimilarity", mock.Anything, mock.Anything).Return(0.0)
	llm.On("DetectConceptGaps", mock.Anything, mock.Anything).Return(domain.GapDetection{}, nil)

	ev := usecase.NewEvaluator(llm, emb)
	got, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
		QuestionText: "Explain recursion.",
		IdealAnswer:  idealRecursion,
		Answer:       domain.Answer{ID: "a-1", Text: "bananas"},
		Attempt:      1,
	})
	require.NoError(t, err)
	require.NotNil(t, got.SimilarityScore)
	assert.Equal(t, 0.01, *got.SimilarityScore)
}

func TestEvaluator_BehavioralQuestion_NoSimilarityNoGaps(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMProvider{}
	emb := &mocks.MockEmbeddingService{}

	llm.On("EvaluateAnswer", mock.Anything, mock.Anything).Return(domain.RawEvaluation{Score: 80, Sentiment: "positive"}, nil)

	ev := usecase.NewEvaluator(llm, emb)
	got, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
		QuestionText: "Tell me about a conflict you resolved.",
		IdealAnswer:  "",
		Answer:       domain.Answer{ID: "a-1", Text: "We disagreed about an API design and talked it through."},
		Attempt:      1,
	})
	require.NoError(t, err)
	assert.Nil(t, got.SimilarityScore)
	assert.Empty(t, got.Gaps)
	emb.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
	llm.AssertNotCalled(t, "DetectConceptGaps", mock.Anything, mock.Anything)
}

func TestEvaluator_FewGapCandidates_SkipsLLMConfirmation(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMProvider{}
	emb := &mocks.MockEmbeddingService{}

	// Answer covers nearly all significant tokens of the ideal answer.
	answerText := "A recursive function needs a base case, uses the call stack, and guarantees termination through smaller steps."
	llm.On("EvaluateAnswer", mock.Anything, mock.Anything).Return(domain.RawEvaluation{Score: 92}, nil)
	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	emb.On("CosineSimilarity", mock.Anything, mock.Anything).Return(0.93)

	ev := usecase.NewEvaluator(llm, emb)
	got, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
		QuestionText: "Explain recursion.",
		IdealAnswer:  idealRecursion,
		Answer:       domain.Answer{ID: "a-1", Text: answerText},
		Attempt:      1,
	})
	require.NoError(t, err)
	assert.Empty(t, got.Gaps)
	llm.AssertNotCalled(t, "DetectConceptGaps", mock.Anything, mock.Anything)
}

func TestEvaluator_AttemptPenaltiesApplied(t *testing.T) {
	t.Parallel()
	cases := []struct {
		attempt int
		raw     float64
		want    float64
	}{
		{1, 70, 70},
		{2, 70, 65},
		{3, 70, 55},
		{3, 10, 0}, // clamped at zero
	}
	for _, c := range cases {
		llm := &mocks.MockLLMProvider{}
		emb := &mocks.MockEmbeddingService{}
		llm.On("EvaluateAnswer", mock.Anything, mock.Anything).Return(domain.RawEvaluation{Score: c.raw}, nil)

		ev := usecase.NewEvaluator(llm, emb)
		got, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
			QuestionText: "Tell me about your approach.",
			Answer:       domain.Answer{ID: "a-1", Text: "I iterate on feedback."},
			Attempt:      c.attempt,
		})
		require.NoError(t, err)
		assert.Equal(t, c.want, got.FinalScore, "attempt %d raw %v", c.attempt, c.raw)
	}
}

func TestEvaluator_LLMFailurePropagates(t *testing.T) {
	t.Parallel()
	llm := &mocks.MockLLMProvider{}
	emb := &mocks.MockEmbeddingService{}
	llm.On("EvaluateAnswer", mock.Anything, mock.Anything).Return(domain.RawEvaluation{}, errors.New("provider down"))

	ev := usecase.NewEvaluator(llm, emb)
	_, err := ev.Evaluate(context.Background(), usecase.EvaluateRequest{
		QuestionText: "Explain recursion.",
		Answer:       domain.Answer{ID: "a-1", Text: "something"},
		Attempt:      1,
	})
	require.Error(t, err)
}

func TestResolvedGapIDs(t *testing.T) {
	t.Parallel()
	prior := []domain.Evaluation{{
		Gaps: []domain.ConceptGap{
			{ID: "g-1", Concept: "base case", Resolved: false},
			{ID: "g-2", Concept: "call stack", Resolved: false},
			{ID: "g-3", Concept: "termination", Resolved: true},
		},
	}}
	got := usecase.ResolvedGapIDs(prior, "The base case stops the recursion before the stack overflows.")
	assert.Equal(t, []string{"g-1"}, got)
}
