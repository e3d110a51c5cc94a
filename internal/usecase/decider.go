package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// similarityAdvanceThreshold is the similarity at or above which the answer is
// considered covered and no follow-up is warranted.
const similarityAdvanceThreshold = 0.8

// Decision is the output of the follow-up decider.
type Decision struct {
	NeedsFollowUp  bool
	Reason         string
	FollowUpCount  int
	CumulativeGaps []string
}

// Decide is a pure function: given the latest evaluation and all prior
// follow-up evaluations for the same parent question, it decides whether
// another follow-up is warranted and with what focus. Rules are evaluated in
// order; the first match fires. No side effects, no I/O.
func Decide(followUpCount int, latest domain.Evaluation, priorFollowUps []domain.Evaluation) Decision {
	if followUpCount >= domain.MaxFollowUps {
		return Decision{NeedsFollowUp: false, Reason: "max follow-ups reached", FollowUpCount: domain.MaxFollowUps}
	}
	if latest.SimilarityScore != nil && *latest.SimilarityScore >= similarityAdvanceThreshold {
		return Decision{NeedsFollowUp: false, Reason: "similarity >= 0.8", FollowUpCount: followUpCount}
	}
	if len(latest.UnresolvedGaps()) == 0 {
		return Decision{NeedsFollowUp: false, Reason: "no gaps", FollowUpCount: followUpCount}
	}

	cumulative := cumulativeGaps(latest, priorFollowUps)
	if len(cumulative) == 0 {
		return Decision{NeedsFollowUp: false, Reason: "no cumulative gaps", FollowUpCount: followUpCount}
	}
	return Decision{
		NeedsFollowUp:  true,
		Reason:         fmt.Sprintf("%d missing concepts: %s", len(cumulative), strings.Join(cumulative, ", ")),
		FollowUpCount:  followUpCount,
		CumulativeGaps: cumulative,
	}
}

// cumulativeGaps unions unresolved concept names from the latest evaluation
// and all prior follow-up evaluations, preserving first-seen order.
func cumulativeGaps(latest domain.Evaluation, priorFollowUps []domain.Evaluation) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(ev domain.Evaluation) {
		for _, g := range ev.UnresolvedGaps() {
			key := strings.ToLower(g.Concept)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, g.Concept)
		}
	}
	add(latest)
	for _, ev := range priorFollowUps {
		add(ev)
	}
	return out
}
