package models

// ProposedChange is a single LLM-proposed resume edit with its score impact
type ProposedChange struct {
	Section          string   `json:"section"`
	Original         string   `json:"original"`
	Modified         string   `json:"modified"`
	Reason           string   `json:"reason,omitempty"`
	KeywordsAdded    []string `json:"keywords_added"`
	ImpactPoints     float64  `json:"impact_points" validate:"gte=0"`
	ImpactPerKeyword *float64 `json:"impact_per_keyword,omitempty"`
}

// ScoreCeiling bounds the achievable ATS score when the resume has gaps
// that no wording change can fix (e.g. missing required experience)
type ScoreCeiling struct {
	Maximum  float64  `json:"maximum" validate:"lte=100"`
	Blockers []string `json:"blockers,omitempty"`
	ToReach90 string  `json:"to_reach_90,omitempty"`
}

// ScoreBreakdown holds the total compatibility score plus per-category detail
type ScoreBreakdown struct {
	Total      float64            `json:"total"`
	Categories map[string]float64 `json:"categories,omitempty"`
}

// ResumeAnalysisResult is the full output of one ATS analysis run. It is
// produced by the LLM layer, normalized by the scoring package, and consumed
// by projection and generation endpoints within a single session.
type ResumeAnalysisResult struct {
	CurrentScore    ScoreBreakdown   `json:"current_score"`
	OptimizedScore  ScoreBreakdown   `json:"optimized_score"`
	ProposedChanges []ProposedChange `json:"proposed_changes"`
	ScoreCeiling    *ScoreCeiling    `json:"score_ceiling,omitempty"`
}

// FitAssessment is the result of a quick resume-vs-job fit evaluation
type FitAssessment struct {
	Score     float64  `json:"score"`
	Verdict   string   `json:"verdict"`
	Strengths []string `json:"strengths,omitempty"`
	Gaps      []string `json:"gaps,omitempty"`
	Summary   string   `json:"summary,omitempty"`
}

// GenerationLog records a finalized resume-generation session for archival
type GenerationLog struct {
	ResumeID        string               `json:"resume_id"`
	ProcessID       string               `json:"process_id"`
	Analysis        ResumeAnalysisResult `json:"analysis"`
	AcceptedIndices []int                `json:"accepted_indices,omitempty"`
	FinalScore      float64              `json:"final_score,omitempty"`
	DocumentURL     string               `json:"document_url,omitempty"`
	CreatedAt       string               `json:"created_at"`
}
