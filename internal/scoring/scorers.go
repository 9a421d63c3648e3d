package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/profiles"
)

// Scorer runs the completion-backed scoring dependencies.
type Scorer struct {
	client Client
	logger *zap.Logger
}

// NewScorer creates a scorer using the given completion client.
func NewScorer(client Client, logger *zap.Logger) *Scorer {
	return &Scorer{client: client, logger: logger}
}

// ScoreAlignment rates overall candidate/role alignment on a 0-100 scale.
// The prompt variant comes from experiment assignment; an empty variant uses
// the default instructions.
func (s *Scorer) ScoreAlignment(ctx context.Context, c *profiles.Candidate, r *profiles.Role, variant string) (*AlignmentScore, error) {
	prompt := fmt.Sprintf(
		"Rate the alignment between this candidate and role on a 0-100 scale.\nCandidate: %s\nRole: %s",
		describeCandidate(c), describeRole(r),
	)
	if variant == "structured" {
		prompt += "\nScore each requirement separately, then combine into the overall score."
	}

	res, err := s.client.CompleteJSON(ctx, prompt, map[string]string{
		"overall_score": "number",
		"confidence":    "number",
		"strengths":     "string[]",
		"concerns":      "string[]",
	})
	if err != nil {
		return nil, fmt.Errorf("alignment: %w", err)
	}

	var out AlignmentScore
	if err := decodeChecked(res.Data, &out, "overall_score", "confidence"); err != nil {
		return nil, fmt.Errorf("alignment: %w", err)
	}
	return &out, nil
}

// AnalyzeSkillsGap identifies missing skills and which gaps are critical.
func (s *Scorer) AnalyzeSkillsGap(ctx context.Context, c *profiles.Candidate, r *profiles.Role) (*SkillsGapAnalysis, error) {
	prompt := fmt.Sprintf(
		"List the role's required skills the candidate lacks and mark which gaps are critical.\nCandidate skills: %s\nRequired skills: %s",
		strings.Join(c.Skills, ", "), strings.Join(r.RequiredSkills, ", "),
	)

	res, err := s.client.CompleteJSON(ctx, prompt, map[string]string{
		"missing_skills":  "string[]",
		"critical_gaps":   "string[]",
		"recommendations": "string[]",
	})
	if err != nil {
		return nil, fmt.Errorf("skills gap: %w", err)
	}

	var out SkillsGapAnalysis
	if err := decodeChecked(res.Data, &out, "missing_skills", "critical_gaps"); err != nil {
		return nil, fmt.Errorf("skills gap: %w", err)
	}
	return &out, nil
}

// GenerateInterviewQuestions produces role-specific interview questions.
func (s *Scorer) GenerateInterviewQuestions(ctx context.Context, c *profiles.Candidate, r *profiles.Role) (*InterviewQuestions, error) {
	prompt := fmt.Sprintf(
		"Write 5 interview questions probing this candidate's fit for the role.\nCandidate: %s\nRole: %s",
		describeCandidate(c), describeRole(r),
	)

	res, err := s.client.CompleteJSON(ctx, prompt, map[string]string{
		"questions": "string[]",
	})
	if err != nil {
		return nil, fmt.Errorf("interview questions: %w", err)
	}

	var out InterviewQuestions
	if err := decodeChecked(res.Data, &out, "questions"); err != nil {
		return nil, fmt.Errorf("interview questions: %w", err)
	}
	return &out, nil
}

// ScoreCulturalFit rates culture alignment on a 0-100 scale.
func (s *Scorer) ScoreCulturalFit(ctx context.Context, c *profiles.Candidate, r *profiles.Role) (*CulturalFit, error) {
	prompt := fmt.Sprintf(
		"Rate the cultural fit between this candidate and role on a 0-100 scale.\nCandidate: %s\nRole: %s",
		describeCandidate(c), describeRole(r),
	)

	res, err := s.client.CompleteJSON(ctx, prompt, map[string]string{
		"fit_score":  "number",
		"confidence": "number",
		"signals":    "string[]",
	})
	if err != nil {
		return nil, fmt.Errorf("cultural fit: %w", err)
	}

	var out CulturalFit
	if err := decodeChecked(res.Data, &out, "fit_score", "confidence"); err != nil {
		return nil, fmt.Errorf("cultural fit: %w", err)
	}
	return &out, nil
}

func describeCandidate(c *profiles.Candidate) string {
	return fmt.Sprintf("%s, %.0f years experience, skills: %s, location: %s",
		c.Name, c.ExperienceYears, strings.Join(c.Skills, ", "), c.Location)
}

func describeRole(r *profiles.Role) string {
	return fmt.Sprintf("%s (%s), required skills: %s, location: %s",
		r.Title, r.Seniority, strings.Join(r.RequiredSkills, ", "), r.Location)
}
