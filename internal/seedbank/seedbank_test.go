package seedbank

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/domain/mocks"
)

const corpus = `
questions:
  - text: "Explain how a hash map handles collisions."
    type: technical
    difficulty: medium
    skills: [Data Structures]
    tags: [hashing]
    ideal_answer: "Collisions are handled with chaining or open addressing."
    rationale: "Core data structure knowledge."
  - text: "Tell me about a time you disagreed with a teammate."
    type: behavioral
    difficulty: easy
    skills: [Communication]
    ideal_answer: "A strong answer describes the disagreement, the resolution, and the outcome."
`

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedFile_IngestsRepoAndVectors(t *testing.T) {
	qRepo := new(mocks.MockQuestionRepository)
	emb := new(mocks.MockEmbeddingService)
	vec := new(mocks.MockVectorIndex)

	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.1, 0.2}, nil).Twice()
	qRepo.On("Create", mock.Anything, mock.MatchedBy(func(q domain.Question) bool {
		return q.Planned() && q.ID != "" && len(q.Embedding) == 2
	})).Return("", nil).Twice()
	vec.On("UpsertQuestion", mock.Anything, mock.Anything).Return(nil).Twice()

	n, err := SeedFile(context.Background(), Deps{Questions: qRepo, Embeddings: emb, Vectors: vec}, writeCorpus(t, corpus))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	qRepo.AssertExpectations(t)
	vec.AssertExpectations(t)
}

func TestSeedFile_DeterministicIDs(t *testing.T) {
	var ids []string
	qRepo := new(mocks.MockQuestionRepository)
	emb := new(mocks.MockEmbeddingService)
	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.1}, nil)
	qRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ids = append(ids, args.Get(1).(domain.Question).ID)
	}).Return("", nil)

	path := writeCorpus(t, corpus)
	deps := Deps{Questions: qRepo, Embeddings: emb}
	_, err := SeedFile(context.Background(), deps, path)
	require.NoError(t, err)
	_, err = SeedFile(context.Background(), deps, path)
	require.NoError(t, err)

	require.Len(t, ids, 4)
	assert.Equal(t, ids[0], ids[2])
	assert.Equal(t, ids[1], ids[3])
}

func TestSeedFile_VectorFailureIsNotFatal(t *testing.T) {
	qRepo := new(mocks.MockQuestionRepository)
	emb := new(mocks.MockEmbeddingService)
	vec := new(mocks.MockVectorIndex)

	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.1}, nil)
	qRepo.On("Create", mock.Anything, mock.Anything).Return("", nil)
	vec.On("UpsertQuestion", mock.Anything, mock.Anything).Return(assert.AnError)

	n, err := SeedFile(context.Background(), Deps{Questions: qRepo, Embeddings: emb, Vectors: vec}, writeCorpus(t, corpus))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSeedFile_RejectsUnknownType(t *testing.T) {
	bad := `
questions:
  - text: "Question?"
    type: riddle
    difficulty: easy
    ideal_answer: "Answer."
`
	_, err := SeedFile(context.Background(), Deps{
		Questions:  new(mocks.MockQuestionRepository),
		Embeddings: new(mocks.MockEmbeddingService),
	}, writeCorpus(t, bad))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSeedFile_MissingFile(t *testing.T) {
	_, err := SeedFile(context.Background(), Deps{}, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestSeedFile_EmptyCorpus(t *testing.T) {
	_, err := SeedFile(context.Background(), Deps{}, writeCorpus(t, "questions: []"))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
