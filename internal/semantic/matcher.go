// Package semantic scores how well a candidate's skills cover a target skill
// set. Matching is heuristic: exact normalized equality, synonym lookup,
// substring containment, and shared-token overlap, in that order of strength.
package semantic

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

// Category classifies how a skill match was established.
type Category string

const (
	CategoryExact    Category = "exact"
	CategorySemantic Category = "semantic"
	CategoryRelated  Category = "related"
)

// Match records one matched target skill.
type Match struct {
	Skill      string   `json:"skill"`
	Confidence float64  `json:"confidence"`
	Synonyms   []string `json:"synonyms,omitempty"`
	Category   Category `json:"category"`
}

// Analysis is the result of comparing candidate skills against target skills.
type Analysis struct {
	SkillMatches      []Match  `json:"skill_matches"`
	OverallSimilarity float64  `json:"overall_similarity"`
	MissingSkills     []string `json:"missing_skills"`
	RelatedSkills     []string `json:"related_skills"`
}

// semanticThreshold is the minimum similarity for a semantic match; weaker
// candidates leave the target skill missing.
const semanticThreshold = 0.7

// Matcher holds the skill taxonomy used for synonym and category lookups.
type Matcher struct {
	synonyms   map[string][]string
	categories map[string]string
	logger     *zap.Logger
}

// NewMatcher creates a matcher with the built-in taxonomy.
func NewMatcher(logger *zap.Logger) *Matcher {
	m := &Matcher{
		synonyms:   make(map[string][]string),
		categories: make(map[string]string),
		logger:     logger,
	}
	m.applyTaxonomy(defaultTaxonomy())
	return m
}

// Normalize lowercases a skill, strips non-alphanumeric characters, and
// collapses whitespace. Tokens are preserved: "java script" stays two tokens.
func Normalize(skill string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(skill) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity scores two skills in [0,1]: 1.0 exact, 0.95 synonym, 0.8
// containment, 0.6 + 0.1 per shared token otherwise, 0.0 with no overlap.
func (m *Matcher) Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if m.isSynonym(na, nb) {
		return 0.95
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.8
	}
	if shared := sharedTokens(na, nb); shared > 0 {
		return math.Min(0.6+0.1*float64(shared), 0.95)
	}
	return 0
}

// AnalyzeSkills matches target skills against candidate skills in two passes
// (exact, then semantic), then reports unmatched candidate skills that share a
// category with some target as related.
func (m *Matcher) AnalyzeSkills(candidateSkills, targetSkills []string) Analysis {
	analysis := Analysis{
		SkillMatches:  make([]Match, 0, len(targetSkills)),
		MissingSkills: []string{},
		RelatedSkills: []string{},
	}

	matchedCandidates := make(map[string]bool)
	remaining := make([]string, 0, len(targetSkills))

	// Exact pass.
	for _, target := range targetSkills {
		nt := Normalize(target)
		found := false
		for _, cand := range candidateSkills {
			if Normalize(cand) == nt {
				analysis.SkillMatches = append(analysis.SkillMatches, Match{
					Skill:      displayForm(target),
					Confidence: 1.0,
					Synonyms:   m.synonymsOf(nt),
					Category:   CategoryExact,
				})
				matchedCandidates[Normalize(cand)] = true
				found = true
				break
			}
		}
		if !found {
			remaining = append(remaining, target)
		}
	}

	// Semantic pass over targets the exact pass left behind.
	for _, target := range remaining {
		best := 0.0
		bestCand := ""
		for _, cand := range candidateSkills {
			if s := m.Similarity(cand, target); s > best {
				best = s
				bestCand = Normalize(cand)
			}
		}
		if best > semanticThreshold {
			analysis.SkillMatches = append(analysis.SkillMatches, Match{
				Skill:      displayForm(target),
				Confidence: best,
				Synonyms:   m.synonymsOf(Normalize(target)),
				Category:   CategorySemantic,
			})
			matchedCandidates[bestCand] = true
		} else {
			analysis.MissingSkills = append(analysis.MissingSkills, displayForm(target))
		}
	}

	// Unmatched candidate skills sharing a category with a target are related.
	targetCategories := make(map[string]bool)
	for _, target := range targetSkills {
		if cat, ok := m.categories[Normalize(target)]; ok {
			targetCategories[cat] = true
		}
	}
	for _, cand := range candidateSkills {
		nc := Normalize(cand)
		if matchedCandidates[nc] {
			continue
		}
		if cat, ok := m.categories[nc]; ok && targetCategories[cat] {
			analysis.RelatedSkills = append(analysis.RelatedSkills, displayForm(cand))
		}
	}

	var confidenceSum float64
	for _, match := range analysis.SkillMatches {
		confidenceSum += match.Confidence
	}
	denom := float64(len(targetSkills))
	if denom < 1 {
		denom = 1
	}
	analysis.OverallSimilarity = math.Round(100*confidenceSum/denom*100) / 100

	return analysis
}

func (m *Matcher) isSynonym(na, nb string) bool {
	for _, s := range m.synonyms[na] {
		if s == nb {
			return true
		}
	}
	for _, s := range m.synonyms[nb] {
		if s == na {
			return true
		}
	}
	return false
}

func (m *Matcher) synonymsOf(normalized string) []string {
	return m.synonyms[normalized]
}

func sharedTokens(a, b string) int {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(a) {
		tokens[tok] = true
	}
	count := 0
	for _, tok := range strings.Fields(b) {
		if tokens[tok] {
			count++
		}
	}
	return count
}

// displayForm is the reported spelling of a skill: lowercased and trimmed but
// with punctuation intact ("Node.js" reports as "node.js").
func displayForm(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}
