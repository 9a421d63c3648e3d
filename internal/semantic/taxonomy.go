package semantic

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Taxonomy maps normalized skills to their synonyms and categories. The
// built-in table covers common recruiting skills; deployments can extend it
// from a YAML file.
type Taxonomy struct {
	Synonyms   map[string][]string `yaml:"synonyms"`
	Categories map[string]string   `yaml:"categories"`
}

// LoadTaxonomy merges a YAML taxonomy file over the built-in table. Entries in
// the file win on conflict.
func (m *Matcher) LoadTaxonomy(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read taxonomy: %w", err)
	}
	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return fmt.Errorf("unmarshal taxonomy: %w", err)
	}
	m.applyTaxonomy(tax)
	m.logger.Info("Skill taxonomy loaded",
		zap.String("path", path),
		zap.Int("synonym_entries", len(tax.Synonyms)),
		zap.Int("category_entries", len(tax.Categories)),
	)
	return nil
}

func (m *Matcher) applyTaxonomy(tax Taxonomy) {
	for skill, syns := range tax.Synonyms {
		key := Normalize(skill)
		normalized := make([]string, 0, len(syns))
		for _, s := range syns {
			if ns := Normalize(s); ns != "" {
				normalized = append(normalized, ns)
			}
		}
		m.synonyms[key] = normalized
	}
	for skill, category := range tax.Categories {
		m.categories[Normalize(skill)] = category
	}
}

func defaultTaxonomy() Taxonomy {
	return Taxonomy{
		Synonyms: map[string][]string{
			"javascript":       {"js", "ecmascript"},
			"typescript":       {"ts"},
			"go":               {"golang"},
			"python":           {"py"},
			"kubernetes":       {"k8s"},
			"postgresql":       {"postgres"},
			"machine learning": {"ml"},
			"aws":              {"amazon web services"},
			"gcp":              {"google cloud", "google cloud platform"},
			"node js":          {"nodejs", "node"},
			"ci cd":            {"cicd", "continuous integration"},
			"rest":             {"rest api", "restful"},
		},
		Categories: map[string]string{
			"python": "language", "java": "language", "javascript": "language",
			"typescript": "language", "c": "language", "go": "language",
			"rust": "language", "ruby": "language", "php": "language",
			"swift": "language", "kotlin": "language",

			"react": "frontend", "angular": "frontend", "vue": "frontend",

			"node js": "backend", "nodejs": "backend", "express": "backend",
			"django": "backend", "flask": "backend", "spring": "backend",
			"laravel": "backend",

			"aws": "cloud", "azure": "cloud", "gcp": "cloud",
			"docker": "cloud", "kubernetes": "cloud", "jenkins": "cloud",
			"ci cd": "cloud", "terraform": "cloud",

			"sql": "database", "mongodb": "database", "postgresql": "database",
			"mysql": "database", "redis": "database", "elasticsearch": "database",

			"machine learning": "data", "data science": "data",
			"analytics": "data", "statistics": "data", "ai": "data",

			"agile": "practice", "scrum": "practice", "devops": "practice",
			"microservices": "practice", "rest": "practice", "graphql": "practice",
		},
	}
}
