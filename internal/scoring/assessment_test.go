package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/talentflow/orchestrator/internal/profiles"
)

func strongCandidate() *profiles.Candidate {
	return &profiles.Candidate{
		ID: "cand-1", Name: "Priya Nair",
		Skills:          []string{"Go", "Kubernetes", "PostgreSQL"},
		ExperienceYears: 9,
		Titles:          []string{"Engineering Manager", "Tech Lead"},
	}
}

func backendRole() *profiles.Role {
	return &profiles.Role{
		ID: "role-1", Title: "Backend Engineer", Seniority: "senior",
		RequiredSkills:     []string{"Go", "Kubernetes", "PostgreSQL"},
		MinExperienceYears: 5,
	}
}

func TestAssessStrongCandidate(t *testing.T) {
	a := NewAssessor(zaptest.NewLogger(t))

	out := a.Assess(strongCandidate(), backendRole(), FocusGeneral)
	assert.Greater(t, out.Score, 80.0)
	assert.Equal(t, FocusGeneral, out.Focus)
	assert.Empty(t, out.Findings)
	assert.Greater(t, out.Confidence, 0.8, "complete profiles give high confidence")
}

func TestAssessFocusShiftsScore(t *testing.T) {
	a := NewAssessor(zaptest.NewLogger(t))

	// No leadership titles, full skill coverage.
	candidate := strongCandidate()
	candidate.Titles = nil
	role := backendRole()
	role.LeadershipRequired = true

	leadership := a.Assess(candidate, role, FocusLeadership)
	technical := a.Assess(candidate, role, FocusTechnical)

	assert.Less(t, leadership.Score, technical.Score,
		"a leadership focus must penalize a candidate without leadership signals")
	assert.Contains(t, leadership.Findings, "limited leadership track record for a leadership role")
	assert.NotEmpty(t, leadership.Recommendations)
}

func TestAssessSkillGapFinding(t *testing.T) {
	a := NewAssessor(zaptest.NewLogger(t))

	candidate := strongCandidate()
	candidate.Skills = []string{"Go"}

	out := a.Assess(candidate, backendRole(), FocusTechnical)
	assert.Contains(t, out.Findings, "covers only 33% of required skills")
	assert.NotEmpty(t, out.Recommendations)
}

func TestAssessUnknownFocusDefaultsToGeneral(t *testing.T) {
	a := NewAssessor(zaptest.NewLogger(t))
	out := a.Assess(strongCandidate(), backendRole(), Focus("exotic"))
	assert.Equal(t, FocusGeneral, out.Focus)
}

func TestAssessDeterministic(t *testing.T) {
	a := NewAssessor(zaptest.NewLogger(t))
	first := a.Assess(strongCandidate(), backendRole(), FocusGeneral)
	second := a.Assess(strongCandidate(), backendRole(), FocusGeneral)
	assert.Equal(t, first, second)
}

func TestAssessSparseProfileLowConfidence(t *testing.T) {
	a := NewAssessor(zaptest.NewLogger(t))
	out := a.Assess(&profiles.Candidate{ID: "x"}, &profiles.Role{ID: "y"}, FocusGeneral)
	assert.Less(t, out.Confidence, 0.4)
}
