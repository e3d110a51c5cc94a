// Package domain defines the entities and ports of the adaptive interview engine.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrProviderFailure    = errors.New("external provider failure")
	ErrUpstreamTimeout    = errors.New("upstream timeout")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrSchemaInvalid      = errors.New("schema invalid")
	ErrInternal           = errors.New("internal error")
)

// QuestionType enumerates the kinds of questions the planner schedules.
type QuestionType string

const (
	QuestionTechnical   QuestionType = "TECHNICAL"
	QuestionBehavioral  QuestionType = "BEHAVIORAL"
	QuestionSituational QuestionType = "SITUATIONAL"
)

// Difficulty enumerates planned question difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// GapSeverity enumerates how badly a concept is missing from an answer.
type GapSeverity string

const (
	SeverityMinor    GapSeverity = "MINOR"
	SeverityModerate GapSeverity = "MODERATE"
	SeverityMajor    GapSeverity = "MAJOR"
)

// InterviewStatus is the orchestrator state persisted on the aggregate.
type InterviewStatus string

const (
	StatusPlanning    InterviewStatus = "PLANNING"
	StatusIdle        InterviewStatus = "IDLE"
	StatusQuestioning InterviewStatus = "QUESTIONING"
	StatusEvaluating  InterviewStatus = "EVALUATING"
	StatusFollowUp    InterviewStatus = "FOLLOW_UP"
	StatusComplete    InterviewStatus = "COMPLETE"
	StatusCancelled   InterviewStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed from the status.
func (s InterviewStatus) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled
}

// MaxFollowUps bounds the number of adaptive follow-ups per main question.
const MaxFollowUps = 3

// Candidate is a person being interviewed.
type Candidate struct {
	ID        string
	Name      string
	Email     string
	CVRef     string
	CreatedAt time.Time
}

// Skill is one extracted skill from a CV.
type Skill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
	Years       int    `json:"years,omitempty"`
}

// CVAnalysis is a precomputed candidate profile used for planning.
// A candidate may have many; the planner uses the latest.
type CVAnalysis struct {
	ID              string
	CandidateID     string
	Text            string
	Skills          []Skill
	ExperienceYears int
	EducationLevel  string
	SuggestedTopics []string
	SuggestedLevel  Difficulty
	Summary         string
	Embedding       []float32
	CreatedAt       time.Time
}

// SkillNames returns the skill labels in extraction order.
func (a CVAnalysis) SkillNames() []string {
	out := make([]string, len(a.Skills))
	for i, s := range a.Skills {
		out[i] = s.Name
	}
	return out
}

// Question is a planned main question. It is planned iff IdealAnswer is non-empty.
type Question struct {
	ID          string
	Text        string
	Type        QuestionType
	Difficulty  Difficulty
	Skills      []string
	Tags        []string
	IdealAnswer string
	Rationale   string
	Version     int
	Embedding   []float32
	CreatedAt   time.Time
}

// Planned reports whether the question carries a reference answer.
func (q Question) Planned() bool { return q.IdealAnswer != "" }

// FollowUpQuestion probes a gap in the answer to a specific main question.
// OrderInSequence values for one parent are unique and form a prefix of {1,2,3}.
type FollowUpQuestion struct {
	ID               string
	ParentQuestionID string
	InterviewID      string
	Text             string
	GeneratedReason  string
	OrderInSequence  int
	CreatedAt        time.Time
}

// PlanMetadata records how and when the interview plan was produced.
type PlanMetadata struct {
	Strategy          string    `json:"strategy"`
	N                 int       `json:"n"`
	GeneratedAt       time.Time `json:"generated_at"`
	CVSummary         string    `json:"cv_summary"`
	CompletionSummary string    `json:"completion_summary,omitempty"`
}

// Interview is the aggregate root driven by the session orchestrator.
type Interview struct {
	ID                      string
	CandidateID             string
	CVAnalysisID            string
	Status                  InterviewStatus
	QuestionIDs             []string
	AnswerIDs               []string
	CurrentQuestionIndex    int
	AdaptiveFollowUps       []string
	CurrentParentQuestionID string
	CurrentFollowUpCount    int
	PlanMetadata            PlanMetadata
	StartedAt               *time.Time
	CompletedAt             *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// RemainingQuestions reports how many planned questions have not been asked.
func (iv Interview) RemainingQuestions() int {
	n := len(iv.QuestionIDs) - iv.CurrentQuestionIndex
	if n < 0 {
		return 0
	}
	return n
}

// VoiceMetrics are speech-quality scores produced alongside transcription.
// Score fields are on a 0..100 scale; SpeakingRateWPM is words per minute.
type VoiceMetrics struct {
	Intonation      float64 `json:"intonation"`
	Fluency         float64 `json:"fluency"`
	Confidence      float64 `json:"confidence"`
	SpeakingRateWPM float64 `json:"speaking_rate_wpm"`
}

// OverallScore collapses the speech-quality scores into one 0..100 value.
func (m VoiceMetrics) OverallScore() float64 {
	return (m.Intonation + m.Fluency + m.Confidence) / 3.0
}

// Answer is a candidate response to a main or follow-up question.
type Answer struct {
	ID              string
	InterviewID     string
	QuestionID      string
	CandidateID     string
	Text            string
	IsVoice         bool
	AudioRef        string
	DurationSeconds float64
	VoiceMetrics    *VoiceMetrics
	CreatedAt       time.Time
	EvaluatedAt     *time.Time
}

// ConceptGap is a concept present in the ideal answer but missing from the
// candidate's answer. Resolved is forward-only: once true, never flipped back.
type ConceptGap struct {
	ID           string
	EvaluationID string
	Concept      string
	Severity     GapSeverity
	Resolved     bool
}

// Evaluation scores exactly one answer.
// FinalScore = clamp(RawScore+Penalty, 0, 100). SimilarityScore is nil iff the
// question has no ideal answer; a computed similarity of exactly 0 is stored
// as 0.01 to keep "not computed" distinguishable.
type Evaluation struct {
	ID                     string
	AnswerID               string
	QuestionID             string
	InterviewID            string
	RawScore               float64
	Penalty                float64
	FinalScore             float64
	SimilarityScore        *float64
	Completeness           float64
	Relevance              float64
	Sentiment              string
	Reasoning              string
	Strengths              []string
	Weaknesses             []string
	ImprovementSuggestions []string
	AttemptNumber          int
	ParentEvaluationID     *string
	Gaps                   []ConceptGap
	CreatedAt              time.Time
}

// UnresolvedGaps returns the concepts still marked missing, in detection order.
func (e Evaluation) UnresolvedGaps() []ConceptGap {
	var out []ConceptGap
	for _, g := range e.Gaps {
		if !g.Resolved {
			out = append(out, g)
		}
	}
	return out
}

// AttemptPenalty is the pure score adjustment for repeat attempts.
// Attempt 1 is the main answer; attempts 2 and 3 are follow-up answers.
func AttemptPenalty(attempt int) float64 {
	switch {
	case attempt <= 1:
		return 0
	case attempt == 2:
		return -5
	default:
		return -15
	}
}

// ClampScore bounds a score to [0,100].
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Context is an alias so ports stay decoupled from call sites; adapters and
// usecases pass context.Context through unchanged.
type Context = context.Context
