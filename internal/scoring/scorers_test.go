package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/talentflow/orchestrator/internal/profiles"
)

type fakeClient struct {
	data       string
	err        error
	lastPrompt string
}

func (f *fakeClient) CompleteJSON(_ context.Context, prompt string, _ map[string]string) (*Result, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Data: json.RawMessage(f.data), Provider: "fake", Model: "fake-1"}, nil
}

func testProfiles() (*profiles.Candidate, *profiles.Role) {
	return &profiles.Candidate{
			ID: "cand-1", Name: "Sam Chen", Skills: []string{"Go", "PostgreSQL"},
			ExperienceYears: 5, Location: "Berlin",
		}, &profiles.Role{
			ID: "role-1", Title: "Backend Engineer", Seniority: "senior",
			RequiredSkills: []string{"Go", "Kubernetes"}, Location: "Berlin",
		}
}

func TestScoreAlignment(t *testing.T) {
	client := &fakeClient{data: `{"overall_score": 82, "confidence": 0.9, "strengths": ["Go depth"], "concerns": []}`}
	s := NewScorer(client, zaptest.NewLogger(t))
	c, r := testProfiles()

	out, err := s.ScoreAlignment(context.Background(), c, r, "")
	require.NoError(t, err)
	assert.Equal(t, 82.0, out.OverallScore)
	assert.Equal(t, 0.9, out.Confidence)
	assert.NotContains(t, client.lastPrompt, "requirement separately")
}

func TestScoreAlignmentVariantChangesPrompt(t *testing.T) {
	client := &fakeClient{data: `{"overall_score": 70, "confidence": 0.8}`}
	s := NewScorer(client, zaptest.NewLogger(t))
	c, r := testProfiles()

	_, err := s.ScoreAlignment(context.Background(), c, r, "structured")
	require.NoError(t, err)
	assert.Contains(t, client.lastPrompt, "requirement separately")
}

func TestScoreAlignmentSchemaValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing required field", `{"confidence": 0.9}`},
		{"not an object", `[1, 2]`},
		{"wrong field type", `{"overall_score": "high", "confidence": 0.9}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(&fakeClient{data: tt.data}, zaptest.NewLogger(t))
			c, r := testProfiles()
			_, err := s.ScoreAlignment(context.Background(), c, r, "")
			assert.ErrorIs(t, err, ErrSchemaValidation)
		})
	}
}

func TestAnalyzeSkillsGap(t *testing.T) {
	client := &fakeClient{data: `{"missing_skills": ["Kubernetes"], "critical_gaps": [], "recommendations": ["pair with infra team"]}`}
	s := NewScorer(client, zaptest.NewLogger(t))
	c, r := testProfiles()

	out, err := s.AnalyzeSkillsGap(context.Background(), c, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kubernetes"}, out.MissingSkills)
	assert.Empty(t, out.CriticalGaps)
}

func TestGenerateInterviewQuestions(t *testing.T) {
	client := &fakeClient{data: `{"questions": ["Describe a production incident you handled."]}`}
	s := NewScorer(client, zaptest.NewLogger(t))
	c, r := testProfiles()

	out, err := s.GenerateInterviewQuestions(context.Background(), c, r)
	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
}

func TestScoreCulturalFit(t *testing.T) {
	client := &fakeClient{data: `{"fit_score": 64, "confidence": 0.7, "signals": ["collaborative history"]}`}
	s := NewScorer(client, zaptest.NewLogger(t))
	c, r := testProfiles()

	out, err := s.ScoreCulturalFit(context.Background(), c, r)
	require.NoError(t, err)
	assert.Equal(t, 64.0, out.FitScore)
}

func TestScorerPropagatesClientError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	s := NewScorer(&fakeClient{err: wantErr}, zaptest.NewLogger(t))
	c, r := testProfiles()

	_, err := s.AnalyzeSkillsGap(context.Background(), c, r)
	assert.ErrorIs(t, err, wantErr)
}

func TestHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Prompt)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"data":       map[string]any{"overall_score": 75, "confidence": 0.8},
			"provider":   "stub",
			"model":      "stub-1",
			"latency_ms": 12,
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, zaptest.NewLogger(t))
	res, err := client.CompleteJSON(context.Background(), "prompt", map[string]string{"overall_score": "number"})
	require.NoError(t, err)
	assert.Equal(t, "stub", res.Provider)
	assert.Equal(t, int64(12), res.LatencyMs)
}

func TestHTTPClientProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "quota exceeded"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, zaptest.NewLogger(t))
	_, err := client.CompleteJSON(context.Background(), "prompt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestHTTPClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reachability does not require a well-formed completion response.
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))

	client := NewHTTPClient(srv.URL, zaptest.NewLogger(t))
	assert.NoError(t, client.Ping(context.Background()), "any HTTP response means reachable")

	srv.Close()
	assert.Error(t, client.Ping(context.Background()), "a refused connection is unreachable")
}
