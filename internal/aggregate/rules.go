package aggregate

import (
	"fmt"

	"github.com/talentflow/orchestrator/internal/ensemble"
	"github.com/talentflow/orchestrator/internal/scoring"
	"github.com/talentflow/orchestrator/internal/semantic"
)

// recommendation rules fire on thresholds of individual sub-results and are
// applied in a fixed order so output is stable across runs.
type rule struct {
	applies        func(in ruleInput) bool
	recommendation string
	nextStep       string
}

type ruleInput struct {
	overall    float64
	alignment  *scoring.AlignmentScore
	skillsGap  *scoring.SkillsGapAnalysis
	cultural   *scoring.CulturalFit
	assessment *scoring.Assessment
	prediction *ensemble.Prediction
	analysis   *semantic.Analysis
}

var orderedRules = []rule{
	{
		applies:        func(in ruleInput) bool { return in.alignment != nil && in.alignment.OverallScore < 70 },
		recommendation: "Alignment below target; schedule additional screening",
		nextStep:       "Conduct a follow-up screening interview",
	},
	{
		applies:        func(in ruleInput) bool { return in.skillsGap != nil && len(in.skillsGap.CriticalGaps) > 0 },
		recommendation: "Critical skill gaps identified; address gaps before proceeding",
		nextStep:       "Build a targeted upskilling or derisking plan for the critical gaps",
	},
	{
		applies:        func(in ruleInput) bool { return in.skillsGap != nil && len(in.skillsGap.MissingSkills) > 2 },
		recommendation: "Multiple missing skills; verify practical depth in the interview loop",
		nextStep:       "Add a hands-on technical assessment",
	},
	{
		applies:        func(in ruleInput) bool { return in.cultural != nil && in.cultural.FitScore < 60 },
		recommendation: "Cultural fit signals are weak; involve the team in the next round",
		nextStep:       "Schedule a team-panel conversation",
	},
	{
		applies:        func(in ruleInput) bool { return in.analysis != nil && len(in.analysis.MissingSkills) > 0 },
		recommendation: "Required skills missing from the candidate profile; confirm transferable experience",
		nextStep:       "Review portfolio or work samples for adjacent experience",
	},
	{
		applies:        func(in ruleInput) bool { return in.prediction != nil && in.prediction.SuccessProbability < 0.4 },
		recommendation: "Ensemble prediction is unfavorable; collect additional evaluation signals",
		nextStep:       "Request references or an additional work sample",
	},
	{
		applies:        func(in ruleInput) bool { return in.assessment != nil && in.assessment.Score < 50 },
		recommendation: "Rule-based assessment scored low; re-check role requirements against the profile",
		nextStep:       "Re-validate the role's must-have requirements",
	},
	{
		applies:        func(in ruleInput) bool { return in.overall >= 80 },
		recommendation: "Strong overall evaluation; move forward quickly",
		nextStep:       "Extend an interview invitation or offer discussion",
	},
}

const (
	defaultRecommendation = "Proceed with the standard evaluation process"
	defaultNextStep       = "Review the individual dependency results and decide manually"
)

func applyRules(results map[string]any, overall float64) (recommendations, nextSteps []string) {
	in := ruleInput{overall: overall}
	for _, result := range results {
		switch r := result.(type) {
		case *scoring.AlignmentScore:
			in.alignment = r
		case *scoring.SkillsGapAnalysis:
			in.skillsGap = r
		case *scoring.CulturalFit:
			in.cultural = r
		case *scoring.Assessment:
			in.assessment = r
		case *ensemble.Prediction:
			in.prediction = r
		case *semantic.Analysis:
			in.analysis = r
		}
	}

	recommendations = []string{}
	nextSteps = []string{}
	for _, ru := range orderedRules {
		if ru.applies(in) {
			recommendations = append(recommendations, ru.recommendation)
			nextSteps = append(nextSteps, ru.nextStep)
		}
	}

	// Carry dependency-supplied risk factors through verbatim.
	if in.prediction != nil {
		for _, rf := range in.prediction.RiskFactors {
			recommendations = append(recommendations, fmt.Sprintf("Prediction risk factor: %s", rf))
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, defaultRecommendation)
	}
	if len(nextSteps) == 0 {
		nextSteps = append(nextSteps, defaultNextStep)
	}
	return recommendations, nextSteps
}
