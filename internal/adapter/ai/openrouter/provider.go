package openrouter

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// Ensure the port is satisfied.
var _ domain.LLMProvider = (*Client)(nil)

const jsonOnly = "Respond with ONLY valid JSON. No prose, no code fences, no reasoning outside the JSON."

func planContextBlock(pc domain.PlanContext) string {
	var sb strings.Builder
	if pc.CVSummary != "" {
		fmt.Fprintf(&sb, "Candidate summary: %s\n", pc.CVSummary)
	}
	if len(pc.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(pc.Skills, ", "))
	}
	if pc.ExperienceYears > 0 {
		fmt.Fprintf(&sb, "Experience: %d years\n", pc.ExperienceYears)
	}
	if len(pc.SuggestedTopics) > 0 {
		fmt.Fprintf(&sb, "Suggested topics: %s\n", strings.Join(pc.SuggestedTopics, ", "))
	}
	return sb.String()
}

// GenerateQuestion produces one interview question for a skill slot.
func (c *Client) GenerateQuestion(ctx domain.Context, in domain.GenerateQuestionInput) (string, error) {
	system := "You are a senior technical interviewer. You write one interview question at a time, tailored to the candidate. " + jsonOnly
	var sb strings.Builder
	sb.WriteString(planContextBlock(in.Context))
	fmt.Fprintf(&sb, "Write one %s question of %s difficulty about %q.\n", in.Type, in.Difficulty, in.Skill)
	if len(in.Exemplars) > 0 {
		sb.WriteString("Style reference questions (do not repeat them):\n")
		for _, ex := range in.Exemplars {
			fmt.Fprintf(&sb, "- %s\n", ex.Text)
		}
	}
	sb.WriteString(`Return {"question": "..."}`)

	reply, err := c.chatJSON(ctx, "generate_question", system, sb.String(), 400)
	if err != nil {
		return "", err
	}
	var out struct {
		Question string `json:"question"`
	}
	if err := decodeInto("generate_question", reply, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Question) == "" {
		return "", fmt.Errorf("%w: generate_question: empty question", domain.ErrSchemaInvalid)
	}
	return strings.TrimSpace(out.Question), nil
}

// GenerateIdealAnswer produces the reference answer a strong candidate would give.
func (c *Client) GenerateIdealAnswer(ctx domain.Context, questionText string, pc domain.PlanContext) (string, error) {
	system := "You are a senior engineer writing model answers for interview questions. Cover every concept a complete answer needs. " + jsonOnly
	user := planContextBlock(pc) +
		fmt.Sprintf("Question: %s\nReturn {\"ideal_answer\": \"...\"}", questionText)

	reply, err := c.chatJSON(ctx, "generate_ideal_answer", system, user, 800)
	if err != nil {
		return "", err
	}
	var out struct {
		IdealAnswer string `json:"ideal_answer"`
	}
	if err := decodeInto("generate_ideal_answer", reply, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.IdealAnswer) == "" {
		return "", fmt.Errorf("%w: generate_ideal_answer: empty answer", domain.ErrSchemaInvalid)
	}
	return strings.TrimSpace(out.IdealAnswer), nil
}

// GenerateRationale explains why the question was chosen for this candidate.
func (c *Client) GenerateRationale(ctx domain.Context, questionText, idealAnswer string) (string, error) {
	system := "You explain in one or two sentences what an interview question probes. " + jsonOnly
	user := fmt.Sprintf("Question: %s\nReference answer: %s\nReturn {\"rationale\": \"...\"}", questionText, idealAnswer)

	reply, err := c.chatJSON(ctx, "generate_rationale", system, user, 200)
	if err != nil {
		return "", err
	}
	var out struct {
		Rationale string `json:"rationale"`
	}
	if err := decodeInto("generate_rationale", reply, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Rationale), nil
}

// EvaluateAnswer scores one answer on a 0..100 scale with structured feedback.
func (c *Client) EvaluateAnswer(ctx domain.Context, in domain.EvaluateAnswerInput) (domain.RawEvaluation, error) {
	system := "You are a strict but fair technical interviewer scoring answers. Score 0-100. " + jsonOnly
	var sb strings.Builder
	sb.WriteString(planContextBlock(in.Context))
	fmt.Fprintf(&sb, "Question: %s\n", in.QuestionText)
	if in.IdealAnswer != "" {
		fmt.Fprintf(&sb, "Reference answer: %s\n", in.IdealAnswer)
	}
	fmt.Fprintf(&sb, "Candidate answer: %s\n", in.AnswerText)
	sb.WriteString(`Return {"score": 0-100, "completeness": 0-1, "relevance": 0-1, "sentiment": "positive|neutral|negative", "strengths": [...], "weaknesses": [...], "improvement_suggestions": [...], "reasoning": "..."}`)

	reply, err := c.chatJSON(ctx, "evaluate_answer", system, sb.String(), 900)
	if err != nil {
		return domain.RawEvaluation{}, err
	}
	var out struct {
		Score                  float64  `json:"score"`
		Completeness           float64  `json:"completeness"`
		Relevance              float64  `json:"relevance"`
		Sentiment              string   `json:"sentiment"`
		Strengths              []string `json:"strengths"`
		Weaknesses             []string `json:"weaknesses"`
		ImprovementSuggestions []string `json:"improvement_suggestions"`
		Reasoning              string   `json:"reasoning"`
	}
	if err := decodeInto("evaluate_answer", reply, &out); err != nil {
		return domain.RawEvaluation{}, err
	}
	return domain.RawEvaluation{
		Score:                  out.Score,
		Completeness:           out.Completeness,
		Relevance:              out.Relevance,
		Sentiment:              out.Sentiment,
		Strengths:              out.Strengths,
		Weaknesses:             out.Weaknesses,
		ImprovementSuggestions: out.ImprovementSuggestions,
		Reasoning:              out.Reasoning,
	}, nil
}

// DetectConceptGaps confirms which candidate keywords are genuinely missing concepts.
func (c *Client) DetectConceptGaps(ctx domain.Context, in domain.GapDetectionInput) (domain.GapDetection, error) {
	system := "You check which concepts from a reference answer are genuinely missing from a candidate answer. Merge related keywords into named concepts. " + jsonOnly
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n", in.QuestionText)
	fmt.Fprintf(&sb, "Reference answer: %s\n", in.IdealAnswer)
	fmt.Fprintf(&sb, "Candidate answer: %s\n", in.AnswerText)
	fmt.Fprintf(&sb, "Keyword candidates: %s\n", strings.Join(in.CandidateKeywords, ", "))
	sb.WriteString(`Return {"confirmed": true|false, "concepts": ["..."], "severity": "MINOR|MODERATE|MAJOR"}`)

	reply, err := c.chatJSON(ctx, "detect_gaps", system, sb.String(), 400)
	if err != nil {
		return domain.GapDetection{}, err
	}
	var out struct {
		Confirmed bool     `json:"confirmed"`
		Concepts  []string `json:"concepts"`
		Severity  string   `json:"severity"`
	}
	if err := decodeInto("detect_gaps", reply, &out); err != nil {
		return domain.GapDetection{}, err
	}
	return domain.GapDetection{
		Confirmed: out.Confirmed,
		Concepts:  out.Concepts,
		Severity:  domain.GapSeverity(out.Severity),
	}, nil
}

// GenerateFollowUpQuestion writes the next probing question for an open gap.
func (c *Client) GenerateFollowUpQuestion(ctx domain.Context, in domain.FollowUpInput) (string, error) {
	system := "You are a technical interviewer asking one short follow-up question that probes concepts the candidate has not yet covered. Never repeat an earlier follow-up. " + jsonOnly
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original question: %s\n", in.ParentText)
	fmt.Fprintf(&sb, "Latest answer: %s\n", in.AnswerText)
	fmt.Fprintf(&sb, "Missing concepts: %s (severity %s)\n", strings.Join(in.MissingConcepts, ", "), in.Severity)
	if len(in.CumulativeGaps) > 0 {
		fmt.Fprintf(&sb, "All open concepts so far: %s\n", strings.Join(in.CumulativeGaps, ", "))
	}
	if len(in.PreviousFollowUps) > 0 {
		sb.WriteString("Already asked:\n")
		for _, q := range in.PreviousFollowUps {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
	}
	fmt.Fprintf(&sb, "This is follow-up %d of at most %d.\n", in.Order, domain.MaxFollowUps)
	sb.WriteString(`Return {"question": "..."}`)

	reply, err := c.chatJSON(ctx, "generate_follow_up", system, sb.String(), 300)
	if err != nil {
		return "", err
	}
	var out struct {
		Question string `json:"question"`
	}
	if err := decodeInto("generate_follow_up", reply, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Question) == "" {
		return "", fmt.Errorf("%w: generate_follow_up: empty question", domain.ErrSchemaInvalid)
	}
	return strings.TrimSpace(out.Question), nil
}

// GenerateRecommendations writes the coaching section of the final report.
func (c *Client) GenerateRecommendations(ctx domain.Context, in domain.RecommendationInput) (domain.Recommendations, error) {
	system := "You write concise interview coaching feedback from per-answer evaluations. " + jsonOnly
	var sb strings.Builder
	fmt.Fprintf(&sb, "Answers evaluated: %d. Gaps filled during the interview: %d. Gaps still open: %d.\n",
		in.TotalAnswers, in.GapsFilled, in.GapsRemaining)
	for i, a := range in.AnswerSummaries {
		fmt.Fprintf(&sb, "Answer %d: score %.0f; strengths: %s; weaknesses: %s\n",
			i+1, a.Score, strings.Join(a.Strengths, "; "), strings.Join(a.Weaknesses, "; "))
	}
	sb.WriteString(`Return {"strengths": [...], "weaknesses": [...], "study_topics": [...], "technique_tips": [...]}`)

	reply, err := c.chatJSON(ctx, "generate_recommendations", system, sb.String(), 700)
	if err != nil {
		return domain.Recommendations{}, err
	}
	var out domain.Recommendations
	if err := decodeInto("generate_recommendations", reply, &out); err != nil {
		return domain.Recommendations{}, err
	}
	return out, nil
}

// AnalyzeCV derives a structured candidate profile from extracted CV text.
func (c *Client) AnalyzeCV(ctx domain.Context, cvText string) (domain.CVProfile, error) {
	system := "You extract a structured candidate profile from CV text. " + jsonOnly
	user := "CV text:\n" + cvText + "\n" +
		`Return {"skills": [{"name": "...", "proficiency": "...", "years": 0}], "experience_years": 0, "education_level": "...", "suggested_topics": [...], "suggested_level": "EASY|MEDIUM|HARD", "summary": "..."}`

	reply, err := c.chatJSON(ctx, "analyze_cv", system, user, 1200)
	if err != nil {
		return domain.CVProfile{}, err
	}
	var out domain.CVProfile
	if err := decodeInto("analyze_cv", reply, &out); err != nil {
		return domain.CVProfile{}, err
	}
	if len(out.Skills) == 0 && out.Summary == "" {
		return domain.CVProfile{}, fmt.Errorf("%w: analyze_cv: empty profile", domain.ErrSchemaInvalid)
	}
	return out, nil
}
