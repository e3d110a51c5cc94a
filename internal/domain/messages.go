package domain

import "encoding/json"

// Outbound message types emitted by a session, in transition order.
const (
	MsgQuestion          = "question"
	MsgFollowUpQuestion  = "follow_up_question"
	MsgEvaluation        = "evaluation"
	MsgInterviewComplete = "interview_complete"
	MsgError             = "error"
)

// Inbound message types accepted by a session.
const (
	MsgTextAnswer      = "text_answer"
	MsgAudioChunk      = "audio_chunk"
	MsgGetNextQuestion = "get_next_question"
	MsgCancel          = "cancel"
)

// Envelope is the wire frame for both directions: a type tag plus raw payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// QuestionPayload announces the next planned question.
type QuestionPayload struct {
	QuestionID   string       `json:"question_id"`
	Text         string       `json:"text"`
	QuestionType QuestionType `json:"question_type"`
	Difficulty   Difficulty   `json:"difficulty"`
	Index        int          `json:"index"`
	Total        int          `json:"total"`
	AudioPayload string       `json:"audio_payload,omitempty"` // base64 WAV
}

// FollowUpPayload announces a generated follow-up question.
type FollowUpPayload struct {
	QuestionID       string `json:"question_id"`
	ParentQuestionID string `json:"parent_question_id"`
	Text             string `json:"text"`
	GeneratedReason  string `json:"generated_reason"`
	OrderInSequence  int    `json:"order_in_sequence"`
	AudioPayload     string `json:"audio_payload,omitempty"`
}

// EvaluationPayload reports the scored answer back to the client.
type EvaluationPayload struct {
	AnswerID        string   `json:"answer_id"`
	Score           float64  `json:"score"`
	Feedback        string   `json:"feedback"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	SimilarityScore *float64 `json:"similarity_score"`
	Gaps            []string `json:"gaps"`
}

// CompletePayload closes the session with the aggregate result.
type CompletePayload struct {
	InterviewID    string  `json:"interview_id"`
	OverallScore   float64 `json:"overall_score"`
	TotalQuestions int     `json:"total_questions"`
	FeedbackURL    string  `json:"feedback_url"`
}

// ErrorPayload is the single user-visible failure shape.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TextAnswerPayload is a typed candidate answer.
type TextAnswerPayload struct {
	QuestionID string `json:"question_id" validate:"required,uuid4"`
	AnswerText string `json:"answer_text" validate:"required"`
}

// AudioChunkPayload is a spoken candidate answer; Final marks the last chunk.
type AudioChunkPayload struct {
	QuestionID string `json:"question_id" validate:"required,uuid4"`
	Audio      []byte `json:"audio"`
	Final      bool   `json:"final"`
}

// Outbound wraps a payload with its type tag for emission.
type Outbound struct {
	Type    string
	Payload any
}

// MarshalEnvelope serializes an outbound message into its wire frame.
func MarshalEnvelope(m Outbound) ([]byte, error) {
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: m.Type, Data: data})
}
