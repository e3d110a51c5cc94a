// Package mocks provides testify mocks for the domain ports.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// MockLLMProvider mocks domain.LLMProvider.
type MockLLMProvider struct{ mock.Mock }

func (m *MockLLMProvider) GenerateQuestion(ctx domain.Context, in domain.GenerateQuestionInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) GenerateIdealAnswer(ctx domain.Context, questionText string, pc domain.PlanContext) (string, error) {
	args := m.Called(ctx, questionText, pc)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) GenerateRationale(ctx domain.Context, questionText, idealAnswer string) (string, error) {
	args := m.Called(ctx, questionText, idealAnswer)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) EvaluateAnswer(ctx domain.Context, in domain.EvaluateAnswerInput) (domain.RawEvaluation, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.RawEvaluation), args.Error(1)
}

func (m *MockLLMProvider) DetectConceptGaps(ctx domain.Context, in domain.GapDetectionInput) (domain.GapDetection, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.GapDetection), args.Error(1)
}

func (m *MockLLMProvider) GenerateFollowUpQuestion(ctx domain.Context, in domain.FollowUpInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) GenerateRecommendations(ctx domain.Context, in domain.RecommendationInput) (domain.Recommendations, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Recommendations), args.Error(1)
}

func (m *MockLLMProvider) AnalyzeCV(ctx domain.Context, cvText string) (domain.CVProfile, error) {
	args := m.Called(ctx, cvText)
	return args.Get(0).(domain.CVProfile), args.Error(1)
}

// MockEmbeddingService mocks domain.EmbeddingService.
type MockEmbeddingService struct{ mock.Mock }

func (m *MockEmbeddingService) Embed(ctx domain.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmbeddingService) CosineSimilarity(a, b []float32) float64 {
	args := m.Called(a, b)
	return args.Get(0).(float64)
}

// MockVectorIndex mocks domain.VectorIndex.
type MockVectorIndex struct{ mock.Mock }

func (m *MockVectorIndex) UpsertQuestion(ctx domain.Context, q domain.Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockVectorIndex) FindSimilarQuestions(ctx domain.Context, vector []float32, topK int, f domain.ExemplarFilter) ([]domain.Exemplar, error) {
	args := m.Called(ctx, vector, topK, f)
	if v := args.Get(0); v != nil {
		return v.([]domain.Exemplar), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSpeechToText mocks domain.SpeechToText.
type MockSpeechToText struct{ mock.Mock }

func (m *MockSpeechToText) Transcribe(ctx domain.Context, audio []byte, language string) (domain.Transcription, error) {
	args := m.Called(ctx, audio, language)
	return args.Get(0).(domain.Transcription), args.Error(1)
}

// MockTextToSpeech mocks domain.TextToSpeech.
type MockTextToSpeech struct{ mock.Mock }

func (m *MockTextToSpeech) Synthesize(ctx domain.Context, text string, opts domain.SynthesisOptions) ([]byte, error) {
	args := m.Called(ctx, text, opts)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCandidateRepository mocks domain.CandidateRepository.
type MockCandidateRepository struct{ mock.Mock }

func (m *MockCandidateRepository) Create(ctx domain.Context, c domain.Candidate) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *MockCandidateRepository) Get(ctx domain.Context, id string) (domain.Candidate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) GetByEmail(ctx domain.Context, email string) (domain.Candidate, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Candidate), args.Error(1)
}

// MockCVAnalysisRepository mocks domain.CVAnalysisRepository.
type MockCVAnalysisRepository struct{ mock.Mock }

func (m *MockCVAnalysisRepository) Create(ctx domain.Context, a domain.CVAnalysis) (string, error) {
	args := m.Called(ctx, a)
	return args.String(0), args.Error(1)
}

func (m *MockCVAnalysisRepository) Get(ctx domain.Context, id string) (domain.CVAnalysis, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CVAnalysis), args.Error(1)
}

func (m *MockCVAnalysisRepository) LatestByCandidate(ctx domain.Context, candidateID string) (domain.CVAnalysis, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).(domain.CVAnalysis), args.Error(1)
}

// MockQuestionRepository mocks domain.QuestionRepository.
type MockQuestionRepository struct{ mock.Mock }

func (m *MockQuestionRepository) Create(ctx domain.Context, q domain.Question) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

func (m *MockQuestionRepository) Get(ctx domain.Context, id string) (domain.Question, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) Delete(ctx domain.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuestionRepository) ListExemplars(ctx domain.Context, f domain.ExemplarFilter, limit int) ([]domain.Question, error) {
	args := m.Called(ctx, f, limit)
	if v := args.Get(0); v != nil {
		return v.([]domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockFollowUpRepository mocks domain.FollowUpRepository.
type MockFollowUpRepository struct{ mock.Mock }

func (m *MockFollowUpRepository) Create(ctx domain.Context, f domain.FollowUpQuestion) (string, error) {
	args := m.Called(ctx, f)
	return args.String(0), args.Error(1)
}

func (m *MockFollowUpRepository) Get(ctx domain.Context, id string) (domain.FollowUpQuestion, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.FollowUpQuestion), args.Error(1)
}

func (m *MockFollowUpRepository) ListByParent(ctx domain.Context, parentQuestionID string) ([]domain.FollowUpQuestion, error) {
	args := m.Called(ctx, parentQuestionID)
	if v := args.Get(0); v != nil {
		return v.([]domain.FollowUpQuestion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFollowUpRepository) CountByParent(ctx domain.Context, parentQuestionID string) (int, error) {
	args := m.Called(ctx, parentQuestionID)
	return args.Int(0), args.Error(1)
}

// MockInterviewRepository mocks domain.InterviewRepository.
type MockInterviewRepository struct{ mock.Mock }

func (m *MockInterviewRepository) Create(ctx domain.Context, iv domain.Interview) (string, error) {
	args := m.Called(ctx, iv)
	return args.String(0), args.Error(1)
}

func (m *MockInterviewRepository) Get(ctx domain.Context, id string) (domain.Interview, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Interview), args.Error(1)
}

func (m *MockInterviewRepository) Update(ctx domain.Context, iv domain.Interview) error {
	return m.Called(ctx, iv).Error(0)
}

func (m *MockInterviewRepository) Delete(ctx domain.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockAnswerRepository mocks domain.AnswerRepository.
type MockAnswerRepository struct{ mock.Mock }

func (m *MockAnswerRepository) Get(ctx domain.Context, id string) (domain.Answer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Answer), args.Error(1)
}

func (m *MockAnswerRepository) ListByInterview(ctx domain.Context, interviewID string) ([]domain.Answer, error) {
	args := m.Called(ctx, interviewID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Answer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnswerRepository) CreateWithEvaluation(ctx domain.Context, a domain.Answer, e domain.Evaluation) (string, string, error) {
	args := m.Called(ctx, a, e)
	return args.String(0), args.String(1), args.Error(2)
}

// MockEvaluationRepository mocks domain.EvaluationRepository.
type MockEvaluationRepository struct{ mock.Mock }

func (m *MockEvaluationRepository) Get(ctx domain.Context, id string) (domain.Evaluation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationRepository) GetByAnswer(ctx domain.Context, answerID string) (domain.Evaluation, error) {
	args := m.Called(ctx, answerID)
	return args.Get(0).(domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationRepository) ListByInterview(ctx domain.Context, interviewID string) ([]domain.Evaluation, error) {
	args := m.Called(ctx, interviewID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Evaluation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEvaluationRepository) ListByQuestionIDs(ctx domain.Context, interviewID string, questionIDs []string) ([]domain.Evaluation, error) {
	args := m.Called(ctx, interviewID, questionIDs)
	if v := args.Get(0); v != nil {
		return v.([]domain.Evaluation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEvaluationRepository) ResolveGaps(ctx domain.Context, gapIDs []string) error {
	return m.Called(ctx, gapIDs).Error(0)
}

// MockEventPublisher mocks domain.EventPublisher.
type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishInterviewEvent(ctx domain.Context, ev domain.InterviewEvent) error {
	return m.Called(ctx, ev).Error(0)
}
