// Package ensemble combines independent scalar model outputs into a single
// success probability with a spread-derived confidence. The models themselves
// are simple profile heuristics, not trained estimators.
package ensemble

import (
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"
)

// Prediction is the combined output of the model ensemble.
type Prediction struct {
	SuccessProbability float64  `json:"success_probability"`
	Confidence         float64  `json:"confidence"`
	RiskFactors        []string `json:"risk_factors"`
	Recommendations    []string `json:"recommendations"`
}

// ErrNoModelOutputs is returned when the input map is empty.
var ErrNoModelOutputs = errors.New("ensemble: no model outputs to combine")

// Predictor combines model outputs.
type Predictor struct {
	logger *zap.Logger
}

// NewPredictor creates a predictor.
func NewPredictor(logger *zap.Logger) *Predictor {
	return &Predictor{logger: logger}
}

// Predict combines per-model probabilities: the probability is their mean and
// the confidence shrinks with the spread, floored at 0.1.
func (p *Predictor) Predict(models map[string]float64) (Prediction, error) {
	if len(models) == 0 {
		return Prediction{}, ErrNoModelOutputs
	}

	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		sum += clamp01(models[name])
	}
	mean := sum / float64(len(names))

	var variance float64
	for _, name := range names {
		d := clamp01(models[name]) - mean
		variance += d * d
	}
	variance /= float64(len(names))

	pred := Prediction{
		SuccessProbability: mean,
		Confidence:         math.Max(0.1, 1-math.Sqrt(variance)),
		RiskFactors:        []string{},
		Recommendations:    []string{},
	}

	if pred.SuccessProbability < 0.25 {
		pred.RiskFactors = append(pred.RiskFactors, "very low success probability")
	} else if pred.SuccessProbability < 0.4 {
		pred.RiskFactors = append(pred.RiskFactors, "low success probability")
	}
	if pred.Confidence < 0.5 {
		pred.RiskFactors = append(pred.RiskFactors, "low prediction confidence")
	}
	for _, name := range names {
		if clamp01(models[name]) < 0.3 {
			pred.RiskFactors = append(pred.RiskFactors, "model "+name+" predicts poor fit")
		}
	}

	switch {
	case pred.SuccessProbability >= 0.7:
		pred.Recommendations = append(pred.Recommendations, "Strong signal; proceed to the next stage")
	case pred.SuccessProbability < 0.4:
		pred.Recommendations = append(pred.Recommendations, "Weak signal; gather additional evaluation data")
	}
	if pred.Confidence < 0.5 {
		pred.Recommendations = append(pred.Recommendations, "Model outputs disagree; collect more signals before deciding")
	}

	p.logger.Debug("Ensemble prediction combined",
		zap.Int("models", len(names)),
		zap.Float64("probability", pred.SuccessProbability),
		zap.Float64("confidence", pred.Confidence),
	)

	return pred, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
