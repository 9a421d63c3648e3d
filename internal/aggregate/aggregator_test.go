package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/talentflow/orchestrator/internal/ensemble"
	"github.com/talentflow/orchestrator/internal/scoring"
	"github.com/talentflow/orchestrator/internal/semantic"
)

func TestComputeRisk(t *testing.T) {
	tests := []struct {
		score float64
		conf  float64
		want  RiskLevel
	}{
		{85, 0.85, RiskLow},
		{80, 0.8, RiskLow},
		{85, 0.7, RiskMedium},
		{65, 0.65, RiskMedium},
		{50, 0.5, RiskHigh},
		{45, 0.45, RiskHigh},
		{50, 0.3, RiskCritical},
		{30, 0.9, RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeRisk(tt.score, tt.conf),
			"ComputeRisk(%v, %v)", tt.score, tt.conf)
	}
}

func TestAggregateMeansAvailableScores(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	summary := a.Aggregate(map[string]any{
		"alignment":    &scoring.AlignmentScore{OverallScore: 90, Confidence: 0.9},
		"cultural_fit": &scoring.CulturalFit{FitScore: 70, Confidence: 0.7},
	})

	assert.Equal(t, 80.0, summary.OverallScore)
	assert.Equal(t, 80.0, summary.Confidence, "confidence is reported on a 0-100 scale")
	assert.Equal(t, RiskLow, summary.RiskLevel)
}

func TestAggregateExcludesMissingDependencies(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	// Interview questions carry no score; they must not drag the mean to 0.
	summary := a.Aggregate(map[string]any{
		"alignment":           &scoring.AlignmentScore{OverallScore: 88, Confidence: 0.9},
		"interview_questions": &scoring.InterviewQuestions{Questions: []string{"q1"}},
	})
	assert.Equal(t, 88.0, summary.OverallScore)
}

func TestAggregateSkillsGapExtraction(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	summary := a.Aggregate(map[string]any{
		"skills_gap": &scoring.SkillsGapAnalysis{
			MissingSkills: []string{"a", "b"},
			CriticalGaps:  []string{"c"},
		},
	})
	// 100 - 10*2 - 20*1 = 60
	assert.Equal(t, 60.0, summary.OverallScore)

	floor := a.Aggregate(map[string]any{
		"skills_gap": &scoring.SkillsGapAnalysis{
			MissingSkills: []string{"a", "b", "c", "d", "e", "f"},
			CriticalGaps:  []string{"g", "h", "i"},
		},
	})
	assert.Equal(t, 0.0, floor.OverallScore, "sub-score is floored at 0")
}

func TestAggregateEnsembleExtraction(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	summary := a.Aggregate(map[string]any{
		"ensemble_prediction": &ensemble.Prediction{SuccessProbability: 0.72, Confidence: 0.85},
		"semantic_analysis":   &semantic.Analysis{OverallSimilarity: 68},
	})
	assert.Equal(t, 70.0, summary.OverallScore)
	assert.Equal(t, 85.0, summary.Confidence, "only the ensemble supplies an explicit confidence")
}

func TestAggregateDefaultConfidence(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	summary := a.Aggregate(map[string]any{
		"semantic_analysis": &semantic.Analysis{OverallSimilarity: 75},
	})
	assert.Equal(t, 50.0, summary.Confidence, "0.5 default when nothing reports confidence")
	assert.Equal(t, RiskHigh, summary.RiskLevel)
}

func TestAggregateEmptyResults(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	summary := a.Aggregate(map[string]any{})
	assert.Equal(t, 0.0, summary.OverallScore)
	assert.Equal(t, RiskCritical, summary.RiskLevel)
	assert.Equal(t, []string{defaultRecommendation}, summary.Recommendations)
	assert.Equal(t, []string{defaultNextStep}, summary.NextSteps)
}

func TestAggregateCommutative(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	results := map[string]any{
		"alignment":           &scoring.AlignmentScore{OverallScore: 55, Confidence: 0.6},
		"skills_gap":          &scoring.SkillsGapAnalysis{MissingSkills: []string{"x"}},
		"cultural_fit":        &scoring.CulturalFit{FitScore: 45, Confidence: 0.5},
		"ensemble_prediction": &ensemble.Prediction{SuccessProbability: 0.3, Confidence: 0.7},
	}
	first := a.Aggregate(results)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Aggregate(results), "aggregation is order-independent")
	}
}

func TestRecommendationRules(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	summary := a.Aggregate(map[string]any{
		"alignment":  &scoring.AlignmentScore{OverallScore: 60, Confidence: 0.6},
		"skills_gap": &scoring.SkillsGapAnalysis{CriticalGaps: []string{"Kubernetes"}},
	})

	assert.Contains(t, summary.Recommendations, "Alignment below target; schedule additional screening")
	assert.Contains(t, summary.Recommendations, "Critical skill gaps identified; address gaps before proceeding")
	assert.NotEmpty(t, summary.NextSteps)
	// Rules fire in declaration order.
	assert.Equal(t, "Alignment below target; schedule additional screening", summary.Recommendations[0])
}

func TestRecommendationCarriesPredictionRiskFactors(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t))

	summary := a.Aggregate(map[string]any{
		"ensemble_prediction": &ensemble.Prediction{
			SuccessProbability: 0.8,
			Confidence:         0.9,
			RiskFactors:        []string{"model experience_fit predicts poor fit"},
		},
	})
	assert.Contains(t, summary.Recommendations, "Prediction risk factor: model experience_fit predicts poor fit")
}
