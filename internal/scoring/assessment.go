package scoring

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/profiles"
	"github.com/talentflow/orchestrator/internal/semantic"
)

// leadershipSignals are title fragments counted as leadership experience.
var leadershipSignals = []string{
	"lead", "manager", "head", "director", "principal", "staff", "chief", "vp",
}

// Assessor is the rule-based assessment engine. It scores a candidate/role
// pair from profile facts alone, with a configurable focus dimension.
type Assessor struct {
	logger *zap.Logger
}

// NewAssessor creates an assessor.
func NewAssessor(logger *zap.Logger) *Assessor {
	return &Assessor{logger: logger}
}

// Assess produces a 0-100 score from three weighted dimensions: skill
// coverage, experience fit, and leadership signals. The focus shifts the
// weights toward the dimension under evaluation.
func (a *Assessor) Assess(c *profiles.Candidate, r *profiles.Role, focus Focus) *Assessment {
	skills := skillDimension(c, r)
	experience := experienceDimension(c, r)
	leadership := leadershipDimension(c, r)

	var wSkills, wExp, wLead float64
	switch focus {
	case FocusLeadership:
		wSkills, wExp, wLead = 0.2, 0.3, 0.5
	case FocusTechnical:
		wSkills, wExp, wLead = 0.6, 0.3, 0.1
	default:
		focus = FocusGeneral
		wSkills, wExp, wLead = 0.4, 0.35, 0.25
	}

	score := 100 * (wSkills*skills + wExp*experience + wLead*leadership)

	out := &Assessment{
		Score:      score,
		Confidence: assessmentConfidence(c, r),
		Focus:      focus,
		Findings:   []string{},
	}

	if skills < 0.5 {
		out.Findings = append(out.Findings, fmt.Sprintf("covers only %.0f%% of required skills", skills*100))
	}
	if experience < 0.5 {
		out.Findings = append(out.Findings, "experience below the role's requirement")
	}
	if focus == FocusLeadership && leadership < 0.5 {
		out.Findings = append(out.Findings, "limited leadership track record for a leadership role")
		out.Recommendations = append(out.Recommendations, "Probe leadership experience in a dedicated interview round")
	}
	if focus == FocusTechnical && skills < 0.7 {
		out.Recommendations = append(out.Recommendations, "Run a hands-on technical exercise covering the missing skills")
	}

	a.logger.Debug("Rule-based assessment computed",
		zap.String("focus", string(focus)),
		zap.Float64("score", score),
	)

	return out
}

func skillDimension(c *profiles.Candidate, r *profiles.Role) float64 {
	if len(r.RequiredSkills) == 0 {
		return 0.5
	}
	have := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		have[semantic.Normalize(s)] = true
	}
	covered := 0
	for _, s := range r.RequiredSkills {
		if have[semantic.Normalize(s)] {
			covered++
		}
	}
	return float64(covered) / float64(len(r.RequiredSkills))
}

func experienceDimension(c *profiles.Candidate, r *profiles.Role) float64 {
	required := r.MinExperienceYears
	if required <= 0 {
		return 0.7
	}
	ratio := c.ExperienceYears / required
	if ratio > 1.5 {
		ratio = 1.5
	}
	return ratio / 1.5
}

func leadershipDimension(c *profiles.Candidate, r *profiles.Role) float64 {
	signals := 0
	for _, title := range c.Titles {
		lower := strings.ToLower(title)
		for _, signal := range leadershipSignals {
			if strings.Contains(lower, signal) {
				signals++
				break
			}
		}
	}
	score := float64(signals) / 3
	if score > 1 {
		score = 1
	}
	if !r.LeadershipRequired && signals == 0 {
		// Leadership is optional for the role; absence should not drag the
		// assessment down.
		return 0.6
	}
	return score
}

// assessmentConfidence reflects profile completeness, not model certainty.
func assessmentConfidence(c *profiles.Candidate, r *profiles.Role) float64 {
	fields := 0.0
	present := 0.0

	for _, filled := range []bool{
		len(c.Skills) > 0,
		c.ExperienceYears > 0,
		len(c.Titles) > 0,
		len(r.RequiredSkills) > 0,
		r.MinExperienceYears > 0,
		r.Seniority != "",
	} {
		fields++
		if filled {
			present++
		}
	}
	// Scale into [0.3, 0.9]: even a sparse profile supports some judgement.
	return 0.3 + 0.6*(present/fields)
}
