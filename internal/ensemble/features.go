package ensemble

import (
	"strings"

	"github.com/talentflow/orchestrator/internal/profiles"
	"github.com/talentflow/orchestrator/internal/semantic"
)

// Models derives the per-model probabilities fed into Predict from a
// candidate/role pair. Each "model" is a deterministic heuristic over one
// profile dimension.
func Models(candidate *profiles.Candidate, role *profiles.Role) map[string]float64 {
	return map[string]float64{
		"skill_coverage": skillCoverage(candidate.Skills, role.RequiredSkills),
		"experience_fit": experienceFit(candidate.ExperienceYears, role.MinExperienceYears),
		"location_fit":   locationFit(candidate.Location, role.Location),
	}
}

func skillCoverage(candidateSkills, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		return 0.5
	}
	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		have[semantic.Normalize(s)] = true
	}
	covered := 0
	for _, s := range requiredSkills {
		if have[semantic.Normalize(s)] {
			covered++
		}
	}
	return float64(covered) / float64(len(requiredSkills))
}

func experienceFit(years, required float64) float64 {
	if required <= 0 {
		return 0.7
	}
	ratio := years / required
	switch {
	case ratio >= 1.5:
		return 0.9
	case ratio >= 1:
		return 0.8
	case ratio >= 0.5:
		return 0.5
	default:
		return 0.2
	}
}

func locationFit(candidateLoc, roleLoc string) float64 {
	if roleLoc == "" || strings.EqualFold(roleLoc, "remote") {
		return 0.8
	}
	if strings.EqualFold(strings.TrimSpace(candidateLoc), strings.TrimSpace(roleLoc)) {
		return 0.9
	}
	return 0.4
}
