// Package stubllm is a fast, deterministic LLM provider for local runs and
// tests: no API key, no network, stable outputs for the same inputs.
package stubllm

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/pkg/textx"
)

// Client implements domain.LLMProvider without any upstream calls.
type Client struct{}

var _ domain.LLMProvider = Client{}

// New constructs the stub provider.
func New() Client { return Client{} }

// GenerateQuestion returns a templated question for the skill slot.
func (Client) GenerateQuestion(_ domain.Context, in domain.GenerateQuestionInput) (string, error) {
	switch in.Type {
	case domain.QuestionBehavioral:
		return fmt.Sprintf("Tell me about a time you worked with %s under pressure. What happened?", in.Skill), nil
	case domain.QuestionSituational:
		return fmt.Sprintf("A production incident points at the %s layer. Walk me through your first hour.", in.Skill), nil
	default:
		return fmt.Sprintf("Explain how %s works under the hood and the trade-offs involved (%s).",
			in.Skill, strings.ToLower(string(in.Difficulty))), nil
	}
}

// GenerateIdealAnswer returns a reference answer dense enough to exercise
// keyword gap detection.
func (Client) GenerateIdealAnswer(_ domain.Context, questionText string, _ domain.PlanContext) (string, error) {
	return fmt.Sprintf("A complete answer to %q covers the core mechanism, the main trade-offs, "+
		"failure modes, performance characteristics, and a concrete production example.", questionText), nil
}

// GenerateRationale returns a one-line rationale.
func (Client) GenerateRationale(_ domain.Context, questionText, _ string) (string, error) {
	return fmt.Sprintf("Probes depth of understanding behind %q.", questionText), nil
}

// EvaluateAnswer scores by token overlap with the reference answer so that
// better answers genuinely score higher in local runs.
func (Client) EvaluateAnswer(_ domain.Context, in domain.EvaluateAnswerInput) (domain.RawEvaluation, error) {
	score := 60.0
	completeness := 0.5
	if in.IdealAnswer != "" {
		covered, total := coverage(in.AnswerText, in.IdealAnswer)
		if total > 0 {
			completeness = float64(covered) / float64(total)
			score = 20 + 80*completeness
		}
	} else if len(strings.Fields(in.AnswerText)) > 30 {
		score = 75
	}
	return domain.RawEvaluation{
		Score:        score,
		Completeness: completeness,
		Relevance:    0.8,
		Sentiment:    "neutral",
		Strengths:    []string{"Engaged with the question"},
		Weaknesses:   []string{"Could cover more of the expected concepts"},
		Reasoning:    "Scored by overlap with the reference answer.",
	}, nil
}

// DetectConceptGaps confirms up to three keyword candidates as concepts.
func (Client) DetectConceptGaps(_ domain.Context, in domain.GapDetectionInput) (domain.GapDetection, error) {
	n := len(in.CandidateKeywords)
	if n == 0 {
		return domain.GapDetection{}, nil
	}
	if n > 3 {
		n = 3
	}
	sev := domain.SeverityMinor
	if len(in.CandidateKeywords) > 5 {
		sev = domain.SeverityModerate
	}
	return domain.GapDetection{
		Concepts:  append([]string(nil), in.CandidateKeywords[:n]...),
		Confirmed: true,
		Severity:  sev,
	}, nil
}

// GenerateFollowUpQuestion asks about the first open concept.
func (Client) GenerateFollowUpQuestion(_ domain.Context, in domain.FollowUpInput) (string, error) {
	concept := "the part you skipped"
	if len(in.MissingConcepts) > 0 {
		concept = in.MissingConcepts[0]
	} else if len(in.CumulativeGaps) > 0 {
		concept = in.CumulativeGaps[0]
	}
	return fmt.Sprintf("You did not mention %s. How does it fit into your answer?", concept), nil
}

// GenerateRecommendations returns fixed coaching copy.
func (Client) GenerateRecommendations(_ domain.Context, in domain.RecommendationInput) (domain.Recommendations, error) {
	study := []string{"Review the concepts flagged as gaps"}
	if in.GapsRemaining == 0 {
		study = []string{"Keep practicing explanations out loud"}
	}
	return domain.Recommendations{
		Strengths:     []string{"Completed the interview", "Answered every question"},
		Weaknesses:    []string{"Some reference concepts were not covered"},
		StudyTopics:   study,
		TechniqueTips: []string{"Name the concepts you rely on explicitly"},
	}, nil
}

// AnalyzeCV extracts a small profile from recognizable skill words, with a
// deterministic fallback so planning always has something to work with.
func (Client) AnalyzeCV(_ domain.Context, cvText string) (domain.CVProfile, error) {
	known := []string{"go", "python", "java", "postgres", "mysql", "redis", "kafka", "docker", "kubernetes", "grpc", "react", "aws"}
	seen := make(map[string]struct{})
	for _, tok := range textx.SignificantTokens(cvText) {
		seen[tok] = struct{}{}
	}
	var skills []domain.Skill
	for _, k := range known {
		if _, ok := seen[k]; ok {
			skills = append(skills, domain.Skill{Name: strings.ToUpper(k[:1]) + k[1:]})
		}
	}
	years := int(hashOf(cvText)%8) + 1
	return domain.CVProfile{
		Skills:          skills,
		ExperienceYears: years,
		EducationLevel:  "unknown",
		SuggestedLevel:  domain.DifficultyMedium,
		Summary:         fmt.Sprintf("Engineer with roughly %d years of experience.", years),
	}, nil
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// coverage counts how many significant reference tokens the answer contains.
func coverage(answer, ideal string) (covered, total int) {
	answered := make(map[string]struct{})
	for _, t := range textx.SignificantTokens(answer) {
		answered[t] = struct{}{}
	}
	for _, t := range textx.SignificantTokens(ideal) {
		total++
		if _, ok := answered[t]; ok {
			covered++
		}
	}
	return covered, total
}
