package scoring

// AlignmentScore is the completion-backed candidate/role alignment result.
type AlignmentScore struct {
	OverallScore float64  `json:"overall_score"`
	Confidence   float64  `json:"confidence"`
	Strengths    []string `json:"strengths,omitempty"`
	Concerns     []string `json:"concerns,omitempty"`
}

// SkillsGapAnalysis lists what the candidate is missing for the role.
type SkillsGapAnalysis struct {
	MissingSkills   []string `json:"missing_skills"`
	CriticalGaps    []string `json:"critical_gaps"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// InterviewQuestions is a generated interview plan.
type InterviewQuestions struct {
	Questions []string `json:"questions"`
}

// CulturalFit is the completion-backed culture alignment result.
type CulturalFit struct {
	FitScore   float64  `json:"fit_score"`
	Confidence float64  `json:"confidence"`
	Signals    []string `json:"signals,omitempty"`
}

// Focus selects the emphasis of a rule-based assessment.
type Focus string

const (
	FocusGeneral    Focus = "general"
	FocusLeadership Focus = "leadership"
	FocusTechnical  Focus = "technical"
)

// Assessment is the rule-based engine's output.
type Assessment struct {
	Score           float64  `json:"score"`
	Confidence      float64  `json:"confidence"`
	Focus           Focus    `json:"focus"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations,omitempty"`
}
