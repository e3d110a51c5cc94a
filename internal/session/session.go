package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/usecase"
)

// Error codes surfaced to the client in error payloads.
const (
	CodeInvalidState       = "INVALID_STATE"
	CodeUnexpectedQuestion = "UNEXPECTED_QUESTION"
	CodeBadPayload         = "BAD_PAYLOAD"
	CodeUnknownMessage     = "UNKNOWN_MESSAGE"
	CodeProviderFailure    = "PROVIDER_FAILURE"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeAudioUnsupported   = "AUDIO_UNSUPPORTED"
	CodeCancelled          = "CANCELLED"
)

var validate = validator.New()

// Emitter delivers outbound messages to the connected client. The websocket
// layer implements it; tests substitute a recorder.
type Emitter interface {
	Emit(m domain.Outbound) error
}

// Deps bundles the collaborators of a session.
type Deps struct {
	Interviews  domain.InterviewRepository
	Questions   domain.QuestionRepository
	FollowUps   domain.FollowUpRepository
	Answers     domain.AnswerRepository
	Evaluations domain.EvaluationRepository
	LLM         domain.LLMProvider
	STT         domain.SpeechToText
	TTS         domain.TextToSpeech
	Events      domain.EventPublisher
	Evaluator   usecase.Evaluator
	Summarizer  usecase.Summarizer

	TTSVoice      string
	TTSSpeed      float64
	STTLanguage   string
	InboundBuffer int
	IdleTimeout   time.Duration
}

// Session serializes all interaction for one interview. Exactly one goroutine
// (Run) touches the interview aggregate; the transport feeds it through
// Dispatch, so answers are processed strictly in arrival order.
type Session struct {
	deps        Deps
	interviewID string
	emitter     Emitter
	inbound     chan domain.Envelope
	done        chan struct{}
	closeOnce   sync.Once

	iv                  domain.Interview
	threadEvals         []domain.Evaluation
	threadFollowUpTexts []string
	audioQuestionID     string
	audioBuf            []byte
}

// New builds a session for one interview. Run must be called to start it.
func New(deps Deps, interviewID string, emitter Emitter) *Session {
	buf := deps.InboundBuffer
	if buf <= 0 {
		buf = 16
	}
	if deps.IdleTimeout <= 0 {
		deps.IdleTimeout = 30 * time.Minute
	}
	return &Session{
		deps:        deps,
		interviewID: interviewID,
		emitter:     emitter,
		inbound:     make(chan domain.Envelope, buf),
		done:        make(chan struct{}),
	}
}

// Dispatch hands an inbound frame to the session goroutine. It fails when the
// session is closed or its buffer is full.
func (s *Session) Dispatch(env domain.Envelope) error {
	select {
	case <-s.done:
		return fmt.Errorf("%w: session closed", domain.ErrConflict)
	default:
	}
	select {
	case s.inbound <- env:
		return nil
	default:
		return fmt.Errorf("%w: session busy", domain.ErrConflict)
	}
}

// Done is closed when the session has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close stops the session. Safe to call more than once.
func (s *Session) Close() { s.closeOnce.Do(func() { close(s.done) }) }

// Run drives the interview until a terminal state, cancellation, idle timeout
// or context end. It emits the first (or current, on reconnect) question
// immediately after validating the interview state.
func (s *Session) Run(ctx context.Context) error {
	tracer := otel.Tracer("session")
	ctx, span := tracer.Start(ctx, "session.Run")
	defer span.End()

	observability.SessionsActive.Inc()
	defer observability.SessionsActive.Dec()
	defer s.Close()

	iv, err := s.deps.Interviews.Get(ctx, s.interviewID)
	if err != nil {
		s.emitError(CodePersistenceFailure, "interview could not be loaded")
		return fmt.Errorf("op=session.load: %w", err)
	}
	s.iv = iv

	switch iv.Status {
	case domain.StatusIdle:
		// The interview must have a subject before it leaves IDLE: a plan
		// with at least one loadable question.
		if iv.CurrentQuestionIndex >= len(iv.QuestionIDs) {
			s.emitError(CodeInvalidState, "interview has no planned questions")
			return fmt.Errorf("%w: no planned questions", domain.ErrInvalidArgument)
		}
		if _, err := s.deps.Questions.Get(ctx, iv.QuestionIDs[iv.CurrentQuestionIndex]); err != nil {
			s.emitError(CodePersistenceFailure, "question could not be loaded")
			return fmt.Errorf("op=session.load_question: %w", err)
		}
		now := time.Now().UTC()
		s.iv.StartedAt = &now
		if err := s.transitionAndSave(ctx, domain.StatusQuestioning); err != nil {
			return err
		}
	case domain.StatusQuestioning, domain.StatusFollowUp:
		// Reconnect onto a live interview: rebuild the follow-up thread so
		// gap resolution and the decider see prior evaluations.
		s.rebuildThread(ctx)
	default:
		s.emitError(CodeInvalidState, fmt.Sprintf("interview is %s", iv.Status))
		return fmt.Errorf("%w: session start from %s", domain.ErrInvalidTransition, iv.Status)
	}

	if err := s.emitCurrentQuestion(ctx); err != nil {
		return err
	}

	idle := time.NewTimer(s.deps.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-idle.C:
			s.cancel(ctx, "session idle timeout")
			return nil
		case env := <-s.inbound:
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(s.deps.IdleTimeout)
			s.handle(ctx, env)
			if s.iv.Status.Terminal() {
				return nil
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, env domain.Envelope) {
	switch env.Type {
	case domain.MsgTextAnswer:
		var p domain.TextAnswerPayload
		if err := decode(env.Data, &p); err != nil {
			s.emitError(CodeBadPayload, err.Error())
			return
		}
		s.handleAnswer(ctx, p.QuestionID, p.AnswerText, nil, "", 0)
	case domain.MsgAudioChunk:
		var p domain.AudioChunkPayload
		if err := decode(env.Data, &p); err != nil {
			s.emitError(CodeBadPayload, err.Error())
			return
		}
		s.handleAudioChunk(ctx, p)
	case domain.MsgGetNextQuestion:
		if err := s.emitCurrentQuestion(ctx); err != nil {
			slog.Warn("session: re-emit question failed",
				slog.String("interview_id", s.interviewID), slog.Any("error", err))
		}
	case domain.MsgCancel:
		s.cancel(ctx, "cancelled by candidate")
	default:
		s.emitError(CodeUnknownMessage, fmt.Sprintf("unknown message type %q", env.Type))
	}
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// handleAudioChunk buffers audio for the current question and, on the final
// chunk, transcribes it and treats the transcript as the answer.
func (s *Session) handleAudioChunk(ctx context.Context, p domain.AudioChunkPayload) {
	if s.deps.STT == nil {
		s.emitError(CodeAudioUnsupported, "audio answers are not enabled")
		return
	}
	if p.QuestionID != s.audioQuestionID {
		s.audioQuestionID = p.QuestionID
		s.audioBuf = nil
	}
	s.audioBuf = append(s.audioBuf, p.Audio...)
	if !p.Final {
		return
	}
	audio := s.audioBuf
	s.audioBuf = nil
	s.audioQuestionID = ""

	tr, err := s.deps.STT.Transcribe(ctx, audio, s.deps.STTLanguage)
	if err != nil {
		s.emitError(CodeProviderFailure, "transcription failed, please retry")
		slog.Warn("session: transcription failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
		return
	}
	vm := tr.VoiceMetrics
	s.handleAnswer(ctx, p.QuestionID, tr.Text, &vm, "", tr.DurationSeconds)
}

// handleAnswer runs the full answer cycle: evaluate, resolve prior gaps,
// persist answer+evaluation atomically, then either follow up, advance or
// complete.
func (s *Session) handleAnswer(ctx context.Context, questionID, text string, voice *domain.VoiceMetrics, audioRef string, duration float64) {
	if s.iv.Status != domain.StatusQuestioning && s.iv.Status != domain.StatusFollowUp {
		s.emitError(CodeInvalidState, fmt.Sprintf("answer not accepted while %s", s.iv.Status))
		return
	}
	if cur := s.currentQuestionID(); questionID != cur {
		s.emitError(CodeUnexpectedQuestion, "answer does not match the current question")
		return
	}

	// resume is where a recoverable provider failure returns the interview
	// to, so the candidate can resend the same answer.
	resume := s.iv.Status
	if err := s.transitionAndSave(ctx, domain.StatusEvaluating); err != nil {
		s.fail(ctx, "persist state", err)
		return
	}

	parentID := s.iv.QuestionIDs[s.iv.CurrentQuestionIndex]
	parent, err := s.deps.Questions.Get(ctx, parentID)
	if err != nil {
		s.fail(ctx, "load question", err)
		return
	}
	questionText := parent.Text
	if s.iv.CurrentFollowUpCount > 0 {
		fu, err := s.deps.FollowUps.Get(ctx, questionID)
		if err != nil {
			s.fail(ctx, "load follow-up", err)
			return
		}
		questionText = fu.Text
	}

	attempt := s.iv.CurrentFollowUpCount + 1
	if attempt > domain.MaxFollowUps {
		attempt = domain.MaxFollowUps
	}
	parentEvalID := ""
	if len(s.threadEvals) > 0 {
		parentEvalID = s.threadEvals[0].ID
	}

	answer := domain.Answer{
		ID:              uuid.New().String(),
		InterviewID:     s.iv.ID,
		QuestionID:      questionID,
		CandidateID:     s.iv.CandidateID,
		Text:            text,
		IsVoice:         voice != nil,
		AudioRef:        audioRef,
		DurationSeconds: duration,
		VoiceMetrics:    voice,
		CreatedAt:       time.Now().UTC(),
	}

	// Follow-up answers are scored against the parent question's reference
	// answer; the follow-up itself has none.
	ev, err := s.deps.Evaluator.Evaluate(ctx, usecase.EvaluateRequest{
		InterviewID:        s.iv.ID,
		QuestionID:         questionID,
		QuestionText:       questionText,
		IdealAnswer:        parent.IdealAnswer,
		Answer:             answer,
		Attempt:            attempt,
		ParentEvaluationID: parentEvalID,
		Context:            domain.PlanContext{CVSummary: s.iv.PlanMetadata.CVSummary},
	})
	if err != nil {
		s.emitError(CodeProviderFailure, "evaluation failed, please resend your answer")
		slog.Warn("session: evaluation failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
		if err := s.transitionAndSave(ctx, resume); err != nil {
			s.fail(ctx, "persist state", err)
		}
		return
	}

	now := time.Now().UTC()
	answer.EvaluatedAt = &now
	if _, _, err := s.deps.Answers.CreateWithEvaluation(ctx, answer, ev); err != nil {
		s.fail(ctx, "persist answer", err)
		return
	}
	s.iv.AnswerIDs = append(s.iv.AnswerIDs, answer.ID)

	// Gap flips are forward-only, so they must not outlive a failed answer
	// write; resolve only once the answer and evaluation are committed.
	if resolved := usecase.ResolvedGapIDs(s.threadEvals, text); len(resolved) > 0 {
		if err := s.deps.Evaluations.ResolveGaps(ctx, resolved); err != nil {
			s.fail(ctx, "resolve gaps", err)
			return
		}
		s.markResolved(resolved)
	}
	observability.AnswersEvaluatedTotal.WithLabelValues(strconv.Itoa(attempt)).Inc()

	s.emit(domain.Outbound{Type: domain.MsgEvaluation, Payload: evaluationPayload(ev)})

	decision := usecase.Decide(s.iv.CurrentFollowUpCount, ev, s.threadEvals)
	s.threadEvals = append(s.threadEvals, ev)

	if decision.NeedsFollowUp {
		s.askFollowUp(ctx, parent, text, ev, decision, resume)
		return
	}
	s.advance(ctx)
}

// askFollowUp generates and persists the next adaptive follow-up, then parks
// the interview in FOLLOW_UP awaiting the candidate's answer.
func (s *Session) askFollowUp(ctx context.Context, parent domain.Question, answerText string, ev domain.Evaluation, d usecase.Decision, resume domain.InterviewStatus) {
	order := s.iv.CurrentFollowUpCount + 1

	text, err := s.deps.LLM.GenerateFollowUpQuestion(ctx, domain.FollowUpInput{
		ParentText:        parent.Text,
		AnswerText:        answerText,
		MissingConcepts:   gapConceptNames(ev.UnresolvedGaps()),
		Severity:          worstSeverity(ev.UnresolvedGaps()),
		Order:             order,
		CumulativeGaps:    d.CumulativeGaps,
		PreviousFollowUps: s.threadFollowUpTexts,
	})
	if err != nil {
		s.emitError(CodeProviderFailure, "follow-up generation failed, please resend your answer")
		slog.Warn("session: follow-up generation failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
		if err := s.transitionAndSave(ctx, resume); err != nil {
			s.fail(ctx, "persist state", err)
		}
		return
	}

	fu := domain.FollowUpQuestion{
		ID:               uuid.New().String(),
		ParentQuestionID: parent.ID,
		InterviewID:      s.iv.ID,
		Text:             text,
		GeneratedReason:  d.Reason,
		OrderInSequence:  order,
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := s.deps.FollowUps.Create(ctx, fu); err != nil {
		s.fail(ctx, "persist follow-up", err)
		return
	}

	s.iv.AdaptiveFollowUps = append(s.iv.AdaptiveFollowUps, fu.ID)
	s.iv.CurrentFollowUpCount = order
	s.iv.CurrentParentQuestionID = parent.ID
	if err := s.transitionAndSave(ctx, domain.StatusFollowUp); err != nil {
		s.fail(ctx, "persist state", err)
		return
	}
	s.threadFollowUpTexts = append(s.threadFollowUpTexts, text)
	observability.FollowUpsEmittedTotal.WithLabelValues(strconv.Itoa(order)).Inc()

	s.emit(domain.Outbound{Type: domain.MsgFollowUpQuestion, Payload: domain.FollowUpPayload{
		QuestionID:       fu.ID,
		ParentQuestionID: parent.ID,
		Text:             text,
		GeneratedReason:  fu.GeneratedReason,
		OrderInSequence:  order,
		AudioPayload:     s.synthesize(ctx, text),
	}})
}

// advance moves to the next planned question or completes the interview.
func (s *Session) advance(ctx context.Context) {
	s.iv.CurrentFollowUpCount = 0
	s.iv.CurrentParentQuestionID = ""
	s.threadEvals = nil
	s.threadFollowUpTexts = nil
	s.iv.CurrentQuestionIndex++

	if s.iv.RemainingQuestions() == 0 {
		s.complete(ctx)
		return
	}
	if err := s.transitionAndSave(ctx, domain.StatusQuestioning); err != nil {
		s.fail(ctx, "persist state", err)
		return
	}
	if err := s.emitCurrentQuestion(ctx); err != nil {
		slog.Warn("session: emit question failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
	}
}

// complete finalizes the interview. The summary is computed first so COMPLETE
// is never persisted without one; a failed summary cancels the session.
func (s *Session) complete(ctx context.Context) {
	feedback, err := s.deps.Summarizer.Summarize(ctx, s.iv.ID)
	if err != nil {
		s.fail(ctx, "summarize", err)
		return
	}
	raw, err := json.Marshal(feedback)
	if err != nil {
		s.fail(ctx, "encode summary", err)
		return
	}

	now := time.Now().UTC()
	s.iv.CompletedAt = &now
	s.iv.PlanMetadata.CompletionSummary = string(raw)
	if err := s.transitionAndSave(ctx, domain.StatusComplete); err != nil {
		s.fail(ctx, "persist completion", err)
		return
	}
	observability.InterviewsCompletedTotal.WithLabelValues(string(domain.StatusComplete)).Inc()

	s.emit(domain.Outbound{Type: domain.MsgInterviewComplete, Payload: domain.CompletePayload{
		InterviewID:    s.iv.ID,
		OverallScore:   feedback.OverallScore,
		TotalQuestions: len(s.iv.QuestionIDs),
		FeedbackURL:    "/v1/interviews/" + s.iv.ID + "/summary",
	}})
	s.publishEvent(ctx, domain.EventInterviewCompleted)
	s.Close()
}

// cancel transitions to CANCELLED from any live state and stops the session.
func (s *Session) cancel(ctx context.Context, reason string) {
	if s.iv.Status.Terminal() {
		s.Close()
		return
	}
	if err := Transition(&s.iv, domain.StatusCancelled); err != nil {
		slog.Warn("session: cancel transition failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
		s.Close()
		return
	}
	s.iv.UpdatedAt = time.Now().UTC()
	if err := s.deps.Interviews.Update(ctx, s.iv); err != nil {
		slog.Error("session: persist cancellation failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
	}
	observability.InterviewsCompletedTotal.WithLabelValues(string(domain.StatusCancelled)).Inc()
	s.emitError(CodeCancelled, reason)
	s.publishEvent(ctx, domain.EventInterviewCancelled)
	s.Close()
}

// fail applies the persistence failure policy: report, then cancel.
func (s *Session) fail(ctx context.Context, op string, err error) {
	slog.Error("session: persistence failure",
		slog.String("interview_id", s.interviewID),
		slog.String("op", op), slog.Any("error", err))
	s.emitError(CodePersistenceFailure, "the interview cannot continue")
	s.cancel(ctx, "persistence failure")
}

// transitionAndSave applies one state edge and persists the aggregate.
func (s *Session) transitionAndSave(ctx context.Context, to domain.InterviewStatus) error {
	if err := Transition(&s.iv, to); err != nil {
		return err
	}
	s.iv.UpdatedAt = time.Now().UTC()
	if err := s.deps.Interviews.Update(ctx, s.iv); err != nil {
		return fmt.Errorf("op=session.update status=%s: %w", to, err)
	}
	return nil
}

// currentQuestionID is the question the candidate is expected to answer now.
func (s *Session) currentQuestionID() string {
	if s.iv.CurrentFollowUpCount > 0 && len(s.iv.AdaptiveFollowUps) > 0 {
		return s.iv.AdaptiveFollowUps[len(s.iv.AdaptiveFollowUps)-1]
	}
	if s.iv.CurrentQuestionIndex < len(s.iv.QuestionIDs) {
		return s.iv.QuestionIDs[s.iv.CurrentQuestionIndex]
	}
	return ""
}

func (s *Session) emitCurrentQuestion(ctx context.Context) error {
	id := s.currentQuestionID()
	if id == "" {
		return fmt.Errorf("%w: no current question", domain.ErrInternal)
	}
	if s.iv.CurrentFollowUpCount > 0 {
		fu, err := s.deps.FollowUps.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("op=session.load_followup: %w", err)
		}
		s.emit(domain.Outbound{Type: domain.MsgFollowUpQuestion, Payload: domain.FollowUpPayload{
			QuestionID:       fu.ID,
			ParentQuestionID: fu.ParentQuestionID,
			Text:             fu.Text,
			GeneratedReason:  fu.GeneratedReason,
			OrderInSequence:  fu.OrderInSequence,
			AudioPayload:     s.synthesize(ctx, fu.Text),
		}})
		return nil
	}
	q, err := s.deps.Questions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("op=session.load_question: %w", err)
	}
	s.emit(domain.Outbound{Type: domain.MsgQuestion, Payload: domain.QuestionPayload{
		QuestionID:   q.ID,
		Text:         q.Text,
		QuestionType: q.Type,
		Difficulty:   q.Difficulty,
		Index:        s.iv.CurrentQuestionIndex + 1,
		Total:        len(s.iv.QuestionIDs),
		AudioPayload: s.synthesize(ctx, q.Text),
	}})
	return nil
}

// rebuildThread reloads follow-up state after a reconnect so gap resolution
// and the decider keep working mid-thread. Best effort.
func (s *Session) rebuildThread(ctx context.Context) {
	if s.iv.CurrentFollowUpCount == 0 || s.iv.CurrentParentQuestionID == "" {
		return
	}
	parentID := s.iv.CurrentParentQuestionID
	followUps, err := s.deps.FollowUps.ListByParent(ctx, parentID)
	if err != nil {
		slog.Warn("session: thread rebuild failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
		return
	}
	threadIDs := []string{parentID}
	for _, fu := range followUps {
		threadIDs = append(threadIDs, fu.ID)
		s.threadFollowUpTexts = append(s.threadFollowUpTexts, fu.Text)
	}
	evals, err := s.deps.Evaluations.ListByQuestionIDs(ctx, s.iv.ID, threadIDs)
	if err != nil {
		slog.Warn("session: thread rebuild failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
		return
	}
	s.threadEvals = evals
}

// synthesize renders question text as speech. Synthesis is best effort: on
// failure the client just gets text.
func (s *Session) synthesize(ctx context.Context, text string) string {
	if s.deps.TTS == nil {
		return ""
	}
	audio, err := s.deps.TTS.Synthesize(ctx, text, domain.SynthesisOptions{
		Voice: s.deps.TTSVoice,
		Speed: s.deps.TTSSpeed,
	})
	if err != nil {
		slog.Warn("session: synthesis failed",
			slog.String("interview_id", s.interviewID), slog.Any("error", err))
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}

func (s *Session) markResolved(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range s.threadEvals {
		for j := range s.threadEvals[i].Gaps {
			if _, ok := set[s.threadEvals[i].Gaps[j].ID]; ok {
				s.threadEvals[i].Gaps[j].Resolved = true
			}
		}
	}
}

// publishEvent emits a lifecycle event. Best effort from the session's view.
func (s *Session) publishEvent(ctx context.Context, eventType string) {
	if s.deps.Events == nil {
		return
	}
	err := s.deps.Events.PublishInterviewEvent(ctx, domain.InterviewEvent{
		Type:        eventType,
		InterviewID: s.iv.ID,
		CandidateID: s.iv.CandidateID,
		Status:      string(s.iv.Status),
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("session: publish event failed",
			slog.String("interview_id", s.interviewID),
			slog.String("event", eventType), slog.Any("error", err))
	}
}

func (s *Session) emit(m domain.Outbound) {
	if err := s.emitter.Emit(m); err != nil {
		slog.Warn("session: emit failed",
			slog.String("interview_id", s.interviewID),
			slog.String("type", m.Type), slog.Any("error", err))
	}
}

func (s *Session) emitError(code, msg string) {
	s.emit(domain.Outbound{Type: domain.MsgError, Payload: domain.ErrorPayload{Code: code, Message: msg}})
}

func evaluationPayload(ev domain.Evaluation) domain.EvaluationPayload {
	return domain.EvaluationPayload{
		AnswerID:        ev.AnswerID,
		Score:           ev.FinalScore,
		Feedback:        ev.Reasoning,
		Strengths:       ev.Strengths,
		Weaknesses:      ev.Weaknesses,
		SimilarityScore: ev.SimilarityScore,
		Gaps:            gapConceptNames(ev.UnresolvedGaps()),
	}
}

func gapConceptNames(gaps []domain.ConceptGap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.Concept)
	}
	return out
}

func worstSeverity(gaps []domain.ConceptGap) domain.GapSeverity {
	worst := domain.SeverityMinor
	for _, g := range gaps {
		switch g.Severity {
		case domain.SeverityMajor:
			return domain.SeverityMajor
		case domain.SeverityModerate:
			worst = domain.SeverityModerate
		}
	}
	return worst
}
