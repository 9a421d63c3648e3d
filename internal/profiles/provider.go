// Package profiles defines the subject/target data provider consumed by the
// workflow engine. Real deployments plug in their applicant-tracking backend;
// the in-memory provider serves tests and local runs.
package profiles

import (
	"context"
	"errors"
	"sync"
)

// Candidate is the evaluation subject.
type Candidate struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	Location        string   `json:"location"`
	Titles          []string `json:"titles,omitempty"`
}

// Role is the evaluation target.
type Role struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	RequiredSkills     []string `json:"required_skills"`
	Seniority          string   `json:"seniority"`
	Location           string   `json:"location"`
	LeadershipRequired bool     `json:"leadership_required"`
	MinExperienceYears float64  `json:"min_experience_years"`
}

// Provider supplies candidate and role profiles.
type Provider interface {
	Candidate(ctx context.Context, id string) (*Candidate, error)
	Role(ctx context.Context, id string) (*Role, error)
}

var (
	ErrCandidateNotFound = errors.New("profiles: candidate not found")
	ErrRoleNotFound      = errors.New("profiles: role not found")
)

// StaticProvider is a map-backed Provider.
type StaticProvider struct {
	mu         sync.RWMutex
	candidates map[string]Candidate
	roles      map[string]Role
}

// NewStaticProvider creates an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		candidates: make(map[string]Candidate),
		roles:      make(map[string]Role),
	}
}

// PutCandidate stores or replaces a candidate profile.
func (p *StaticProvider) PutCandidate(c Candidate) {
	p.mu.Lock()
	p.candidates[c.ID] = c
	p.mu.Unlock()
}

// PutRole stores or replaces a role profile.
func (p *StaticProvider) PutRole(r Role) {
	p.mu.Lock()
	p.roles[r.ID] = r
	p.mu.Unlock()
}

func (p *StaticProvider) Candidate(_ context.Context, id string) (*Candidate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.candidates[id]
	if !ok {
		return nil, ErrCandidateNotFound
	}
	return &c, nil
}

func (p *StaticProvider) Role(_ context.Context, id string) (*Role, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.roles[id]
	if !ok {
		return nil, ErrRoleNotFound
	}
	return &r, nil
}
