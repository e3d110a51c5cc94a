package domain

import "time"

// PlanContext carries the CV-derived context threaded through generation calls.
type PlanContext struct {
	CVSummary       string
	Skills          []string
	ExperienceYears int
	SuggestedTopics []string
}

// Exemplar is a retrieved reference question used to steer generation.
type Exemplar struct {
	QuestionID string
	Text       string
	Score      float64
}

// GenerateQuestionInput parameterizes one planned-question generation.
type GenerateQuestionInput struct {
	Context    PlanContext
	Skill      string
	Type       QuestionType
	Difficulty Difficulty
	Exemplars  []Exemplar
}

// RawEvaluation is the unadjusted result of LLM answer assessment.
type RawEvaluation struct {
	Score                  float64
	Completeness           float64
	Relevance              float64
	Sentiment              string
	Strengths              []string
	Weaknesses             []string
	ImprovementSuggestions []string
	Reasoning              string
}

// EvaluateAnswerInput parameterizes one answer assessment.
type EvaluateAnswerInput struct {
	QuestionText string
	AnswerText   string
	IdealAnswer  string
	Context      PlanContext
}

// GapDetectionInput parameterizes LLM confirmation of keyword-gap candidates.
type GapDetectionInput struct {
	AnswerText        string
	IdealAnswer       string
	QuestionText      string
	CandidateKeywords []string
}

// GapDetection is the confirmed subset of missing concepts.
type GapDetection struct {
	Concepts  []string
	Confirmed bool
	Severity  GapSeverity
}

// FollowUpInput parameterizes adaptive follow-up generation.
type FollowUpInput struct {
	ParentText        string
	AnswerText        string
	MissingConcepts   []string
	Severity          GapSeverity
	Order             int
	CumulativeGaps    []string
	PreviousFollowUps []string
}

// RecommendationInput aggregates per-answer results for final coaching advice.
type RecommendationInput struct {
	InterviewID     string
	TotalAnswers    int
	GapsFilled      int
	GapsRemaining   int
	AnswerSummaries []AnswerSummary
}

// AnswerSummary is the per-answer slice of RecommendationInput.
type AnswerSummary struct {
	Score      float64
	Strengths  []string
	Weaknesses []string
}

// Recommendations is the structured coaching section of the final report.
type Recommendations struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	StudyTopics   []string `json:"study_topics"`
	TechniqueTips []string `json:"technique_tips"`
}

// CVProfile is the structured result of LLM-driven CV text analysis.
type CVProfile struct {
	Skills          []Skill    `json:"skills"`
	ExperienceYears int        `json:"experience_years"`
	EducationLevel  string     `json:"education_level"`
	SuggestedTopics []string   `json:"suggested_topics"`
	SuggestedLevel  Difficulty `json:"suggested_level"`
	Summary         string     `json:"summary"`
}

// LLMProvider (port) is the language-model capability consumed by the core.
// All operations are context-bound and may fail with ErrProviderFailure or
// ErrUpstreamTimeout wrapped errors.
type LLMProvider interface {
	GenerateQuestion(ctx Context, in GenerateQuestionInput) (string, error)
	GenerateIdealAnswer(ctx Context, questionText string, pc PlanContext) (string, error)
	GenerateRationale(ctx Context, questionText, idealAnswer string) (string, error)
	EvaluateAnswer(ctx Context, in EvaluateAnswerInput) (RawEvaluation, error)
	DetectConceptGaps(ctx Context, in GapDetectionInput) (GapDetection, error)
	GenerateFollowUpQuestion(ctx Context, in FollowUpInput) (string, error)
	GenerateRecommendations(ctx Context, in RecommendationInput) (Recommendations, error)
	AnalyzeCV(ctx Context, cvText string) (CVProfile, error)
}

// EmbeddingService (port) produces vectors and similarity scores.
type EmbeddingService interface {
	Embed(ctx Context, text string) ([]float32, error)
	// CosineSimilarity returns a similarity in [0,1].
	CosineSimilarity(a, b []float32) float64
}

// ExemplarFilter narrows vector search to matching planned-question metadata.
type ExemplarFilter struct {
	Skill      string
	Type       QuestionType
	Difficulty Difficulty
}

// VectorIndex (port) is the optional exemplar-retrieval capability. Planner
// degrades to zero exemplars when it is absent or failing.
type VectorIndex interface {
	UpsertQuestion(ctx Context, q Question) error
	FindSimilarQuestions(ctx Context, vector []float32, topK int, f ExemplarFilter) ([]Exemplar, error)
}

// Transcription is the output of speech-to-text with voice-quality metrics.
type Transcription struct {
	Text            string
	VoiceMetrics    VoiceMetrics
	DurationSeconds float64
}

// SpeechToText (port) transcribes candidate audio per answer.
type SpeechToText interface {
	Transcribe(ctx Context, audio []byte, language string) (Transcription, error)
}

// SynthesisOptions tune text-to-speech output.
type SynthesisOptions struct {
	Voice string
	Speed float64
}

// TextToSpeech (port) renders question text as audio. Output bytes are opaque
// to the core (WAV, 16 kHz mono, 16-bit PCM by convention).
type TextToSpeech interface {
	Synthesize(ctx Context, text string, opts SynthesisOptions) ([]byte, error)
}

// Repositories (ports)

type CandidateRepository interface {
	Create(ctx Context, c Candidate) (string, error)
	Get(ctx Context, id string) (Candidate, error)
	GetByEmail(ctx Context, email string) (Candidate, error)
}

type CVAnalysisRepository interface {
	Create(ctx Context, a CVAnalysis) (string, error)
	Get(ctx Context, id string) (CVAnalysis, error)
	LatestByCandidate(ctx Context, candidateID string) (CVAnalysis, error)
}

type QuestionRepository interface {
	Create(ctx Context, q Question) (string, error)
	Get(ctx Context, id string) (Question, error)
	Delete(ctx Context, id string) error
	// ListExemplars returns up to limit stored questions matching the filter.
	ListExemplars(ctx Context, f ExemplarFilter, limit int) ([]Question, error)
}

type FollowUpRepository interface {
	Create(ctx Context, f FollowUpQuestion) (string, error)
	Get(ctx Context, id string) (FollowUpQuestion, error)
	ListByParent(ctx Context, parentQuestionID string) ([]FollowUpQuestion, error)
	CountByParent(ctx Context, parentQuestionID string) (int, error)
}

type InterviewRepository interface {
	Create(ctx Context, iv Interview) (string, error)
	Get(ctx Context, id string) (Interview, error)
	Update(ctx Context, iv Interview) error
	Delete(ctx Context, id string) error
}

type AnswerRepository interface {
	Get(ctx Context, id string) (Answer, error)
	ListByInterview(ctx Context, interviewID string) ([]Answer, error)
	// CreateWithEvaluation persists the answer and its evaluation atomically,
	// within a single transaction scoped to the state transition.
	CreateWithEvaluation(ctx Context, a Answer, e Evaluation) (answerID, evaluationID string, err error)
}

type EvaluationRepository interface {
	Get(ctx Context, id string) (Evaluation, error)
	GetByAnswer(ctx Context, answerID string) (Evaluation, error)
	ListByInterview(ctx Context, interviewID string) ([]Evaluation, error)
	ListByQuestionIDs(ctx Context, interviewID string, questionIDs []string) ([]Evaluation, error)
	// ResolveGaps flips the named gap rows to resolved. Forward-only.
	ResolveGaps(ctx Context, gapIDs []string) error
}

// InterviewEvent is a lifecycle notification published for analytics.
type InterviewEvent struct {
	Type        string    `json:"type"`
	InterviewID string    `json:"interview_id"`
	CandidateID string    `json:"candidate_id"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Lifecycle event types.
const (
	EventInterviewPlanned   = "interview.planned"
	EventInterviewCompleted = "interview.completed"
	EventInterviewCancelled = "interview.cancelled"
)

// EventPublisher (port) emits lifecycle events to the message bus.
// Publishing is best-effort from the session's point of view.
type EventPublisher interface {
	PublishInterviewEvent(ctx Context, ev InterviewEvent) error
}
