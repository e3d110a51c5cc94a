// Package session runs one live interview per connected candidate: a
// per-interview goroutine that serializes inbound answers, drives the
// question/evaluation/follow-up cycle and persists every state transition.
package session

import (
	"fmt"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// transitions is the allowed state graph of an interview. Absent entries are
// invalid; terminal states have no outgoing edges.
var transitions = map[domain.InterviewStatus][]domain.InterviewStatus{
	domain.StatusPlanning:    {domain.StatusIdle, domain.StatusCancelled},
	domain.StatusIdle:        {domain.StatusQuestioning, domain.StatusCancelled},
	domain.StatusQuestioning: {domain.StatusEvaluating, domain.StatusCancelled},
	domain.StatusEvaluating:  {domain.StatusFollowUp, domain.StatusQuestioning, domain.StatusComplete, domain.StatusCancelled},
	domain.StatusFollowUp:    {domain.StatusEvaluating, domain.StatusCancelled},
}

// CanTransition reports whether from->to is an allowed edge.
func CanTransition(from, to domain.InterviewStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition mutates the interview status along an allowed edge.
func Transition(iv *domain.Interview, to domain.InterviewStatus) error {
	if !CanTransition(iv.Status, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, iv.Status, to)
	}
	iv.Status = to
	return nil
}
