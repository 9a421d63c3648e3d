package profiles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedCandidate struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Skills          []string `yaml:"skills"`
	ExperienceYears float64  `yaml:"experience_years"`
	Location        string   `yaml:"location"`
	Titles          []string `yaml:"titles"`
}

type seedRole struct {
	ID                 string   `yaml:"id"`
	Title              string   `yaml:"title"`
	RequiredSkills     []string `yaml:"required_skills"`
	Seniority          string   `yaml:"seniority"`
	Location           string   `yaml:"location"`
	LeadershipRequired bool     `yaml:"leadership_required"`
	MinExperienceYears float64  `yaml:"min_experience_years"`
}

type seedFile struct {
	Candidates []seedCandidate `yaml:"candidates"`
	Roles      []seedRole      `yaml:"roles"`
}

// LoadStatic builds a StaticProvider from a YAML seed file.
func LoadStatic(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles seed: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse profiles seed: %w", err)
	}

	p := NewStaticProvider()
	for _, c := range seed.Candidates {
		if c.ID == "" {
			return nil, fmt.Errorf("profiles seed: candidate without id")
		}
		p.PutCandidate(Candidate{
			ID:              c.ID,
			Name:            c.Name,
			Skills:          c.Skills,
			ExperienceYears: c.ExperienceYears,
			Location:        c.Location,
			Titles:          c.Titles,
		})
	}
	for _, r := range seed.Roles {
		if r.ID == "" {
			return nil, fmt.Errorf("profiles seed: role without id")
		}
		p.PutRole(Role{
			ID:                 r.ID,
			Title:              r.Title,
			RequiredSkills:     r.RequiredSkills,
			Seniority:          r.Seniority,
			Location:           r.Location,
			LeadershipRequired: r.LeadershipRequired,
			MinExperienceYears: r.MinExperienceYears,
		})
	}
	return p, nil
}
