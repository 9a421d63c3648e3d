// Package aggregate merges the heterogeneous per-dependency results of one
// workflow into a single summary: overall score, confidence, risk level, and
// recommendations. Aggregation is commutative over the available results;
// missing dependencies are excluded rather than counted as zero.
package aggregate

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/talentflow/orchestrator/internal/ensemble"
	"github.com/talentflow/orchestrator/internal/scoring"
	"github.com/talentflow/orchestrator/internal/semantic"
)

// RiskLevel grades the combined evaluation outcome.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Summary is the combined outcome of one workflow.
type Summary struct {
	OverallScore    float64   `json:"overall_score"`
	Confidence      float64   `json:"confidence"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendations []string  `json:"recommendations"`
	NextSteps       []string  `json:"next_steps"`
}

// defaultConfidence applies when no dependency reports an explicit
// confidence.
const defaultConfidence = 0.5

// Aggregator merges per-dependency results.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate combines the results map (dependency name to typed result, real
// or fallback) into a Summary.
func (a *Aggregator) Aggregate(results map[string]any) Summary {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		scoreSum   float64
		scoreCount int
		confSum    float64
		confCount  int
	)
	for _, name := range names {
		if score, ok := extractScore(results[name]); ok {
			scoreSum += score
			scoreCount++
		}
		if conf, ok := extractConfidence(results[name]); ok {
			confSum += conf
			confCount++
		}
	}

	overall := 0.0
	if scoreCount > 0 {
		overall = scoreSum / float64(scoreCount)
	}
	confidence := defaultConfidence
	if confCount > 0 {
		confidence = confSum / float64(confCount)
	}

	summary := Summary{
		OverallScore: math.Round(overall*100) / 100,
		Confidence:   math.Round(confidence*100*100) / 100,
		RiskLevel:    ComputeRisk(overall, confidence),
	}
	summary.Recommendations, summary.NextSteps = applyRules(results, overall)

	a.logger.Debug("Workflow results aggregated",
		zap.Int("scored_dependencies", scoreCount),
		zap.Float64("overall_score", summary.OverallScore),
		zap.String("risk_level", string(summary.RiskLevel)),
	)

	return summary
}

// ComputeRisk maps (overallScore 0-100, confidence 0-1) to a risk level via
// ordered thresholds; the first matching row wins.
func ComputeRisk(overallScore, confidence float64) RiskLevel {
	switch {
	case overallScore >= 80 && confidence >= 0.8:
		return RiskLow
	case overallScore >= 60 && confidence >= 0.6:
		return RiskMedium
	case overallScore >= 40 && confidence >= 0.4:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// extractScore pulls the 0-100 sub-score out of one dependency result using
// the fixed per-type extraction rule. Results without a score contribution
// (interview questions) return false.
func extractScore(result any) (float64, bool) {
	switch r := result.(type) {
	case *scoring.AlignmentScore:
		return r.OverallScore, true
	case *scoring.SkillsGapAnalysis:
		score := 100 - 10*float64(len(r.MissingSkills)) - 20*float64(len(r.CriticalGaps))
		return math.Max(0, score), true
	case *scoring.CulturalFit:
		return r.FitScore, true
	case *scoring.Assessment:
		return r.Score, true
	case *ensemble.Prediction:
		return r.SuccessProbability * 100, true
	case *semantic.Analysis:
		return r.OverallSimilarity, true
	default:
		return 0, false
	}
}

// extractConfidence pulls the explicit 0-1 confidence from results that
// supply one.
func extractConfidence(result any) (float64, bool) {
	switch r := result.(type) {
	case *scoring.AlignmentScore:
		return r.Confidence, true
	case *scoring.CulturalFit:
		return r.Confidence, true
	case *scoring.Assessment:
		return r.Confidence, true
	case *ensemble.Prediction:
		return r.Confidence, true
	default:
		return 0, false
	}
}
