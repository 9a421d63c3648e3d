package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/talentflow/orchestrator/internal/adapter"
	"github.com/talentflow/orchestrator/internal/ensemble"
	"github.com/talentflow/orchestrator/internal/scoring"
	"github.com/talentflow/orchestrator/internal/semantic"
)

// Dependency names. These are the keys of Result.Results and the labels on
// health records and metrics.
const (
	DepSemanticAnalysis   = "semantic_analysis"
	DepEnsemblePrediction = "ensemble_prediction"
	DepAssessment         = "assessment"
	DepAlignment          = "alignment"
	DepSkillsGap          = "skills_gap"
	DepInterviewQuestions = "interview_questions"
	DepCulturalFit        = "cultural_fit"
)

// plan returns the ordered dependency list for a workflow type. The order
// fixes how settled outcomes map back onto named result slots.
func plan(t Type) ([]string, error) {
	switch t {
	case TypeComprehensive:
		return []string{
			DepSemanticAnalysis,
			DepEnsemblePrediction,
			DepAssessment,
			DepAlignment,
			DepSkillsGap,
			DepInterviewQuestions,
			DepCulturalFit,
		}, nil
	case TypeQuick:
		return []string{DepAlignment, DepSkillsGap}, nil
	case TypeLeadership:
		return []string{DepAssessment, DepCulturalFit}, nil
	case TypeTechnicalDeepDive:
		return []string{DepAssessment, DepSkillsGap, DepInterviewQuestions}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflowType, t)
	}
}

// assessmentFocus picks the rule-based assessment emphasis per workflow type.
func assessmentFocus(t Type) scoring.Focus {
	switch t {
	case TypeLeadership:
		return scoring.FocusLeadership
	case TypeTechnicalDeepDive:
		return scoring.FocusTechnical
	default:
		return scoring.FocusGeneral
	}
}

func decodeInto[T any](data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// registerSpecs installs the fallback value and cache decoder for every
// dependency. Fallbacks are total and shaped like real results so the
// aggregator treats them uniformly.
func registerSpecs(a *adapter.Adapter) {
	a.RegisterSpec(DepSemanticAnalysis, adapter.Spec{
		Fallback: func() any {
			return &semantic.Analysis{
				SkillMatches:      []semantic.Match{},
				OverallSimilarity: 50,
				MissingSkills:     []string{},
				RelatedSkills:     []string{},
			}
		},
		Decode: decodeInto[semantic.Analysis],
	})
	a.RegisterSpec(DepEnsemblePrediction, adapter.Spec{
		Fallback: func() any {
			return &ensemble.Prediction{
				SuccessProbability: 0.5,
				Confidence:         0.1,
				RiskFactors:        []string{"prediction unavailable"},
			}
		},
		Decode: decodeInto[ensemble.Prediction],
	})
	a.RegisterSpec(DepAssessment, adapter.Spec{
		Fallback: func() any {
			return &scoring.Assessment{
				Score:      50,
				Confidence: 0.2,
				Focus:      scoring.FocusGeneral,
				Findings:   []string{"assessment unavailable"},
			}
		},
		Decode: decodeInto[scoring.Assessment],
	})
	a.RegisterSpec(DepAlignment, adapter.Spec{
		Fallback: func() any {
			return &scoring.AlignmentScore{
				OverallScore: 50,
				Confidence:   0.2,
				Concerns:     []string{"alignment scoring unavailable"},
			}
		},
		Decode: decodeInto[scoring.AlignmentScore],
	})
	a.RegisterSpec(DepSkillsGap, adapter.Spec{
		Fallback: func() any {
			return &scoring.SkillsGapAnalysis{
				MissingSkills:   []string{},
				CriticalGaps:    []string{},
				Recommendations: []string{"skills gap analysis unavailable; verify required skills manually"},
			}
		},
		Decode: decodeInto[scoring.SkillsGapAnalysis],
	})
	a.RegisterSpec(DepInterviewQuestions, adapter.Spec{
		Fallback: func() any {
			return &scoring.InterviewQuestions{
				Questions: []string{
					"Walk me through the project you are most proud of and your specific contribution.",
					"Describe a time a technical decision you made turned out to be wrong.",
					"How do you approach learning a technology you have never used?",
				},
			}
		},
		Decode: decodeInto[scoring.InterviewQuestions],
	})
	a.RegisterSpec(DepCulturalFit, adapter.Spec{
		Fallback: func() any {
			return &scoring.CulturalFit{
				FitScore:   50,
				Confidence: 0.2,
				Signals:    []string{"cultural fit scoring unavailable"},
			}
		},
		Decode: decodeInto[scoring.CulturalFit],
	})
}
