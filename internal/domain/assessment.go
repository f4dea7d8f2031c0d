package domain

// DoseEvaluation is the server's assessment of a single dose against its baseline.
// Only Status and Comment drive client behaviour; the remaining fields are kept so
// exports send back exactly what the server returned.
type DoseEvaluation struct {
	Status              DoseStatus `json:"status" yaml:"status"`
	Comment             string     `json:"comment" yaml:"comment"`
	Drug                string     `json:"drug,omitempty" yaml:"drug,omitempty"`
	DoseValue           *float64   `json:"dose_value,omitempty" yaml:"dose_value,omitempty"`
	Unit                string     `json:"unit,omitempty" yaml:"unit,omitempty"`
	FreqPerDay          *float64   `json:"freq_per_day,omitempty" yaml:"freq_per_day,omitempty"`
	Route               string     `json:"route,omitempty" yaml:"route,omitempty"`
	BaselineFound       bool       `json:"baseline_found,omitempty" yaml:"baseline_found,omitempty"`
	PercentAbove        *float64   `json:"percent_above,omitempty" yaml:"percent_above,omitempty"`
	PediatricMgPerKgDay *float64   `json:"pediatric_mg_per_kg_day,omitempty" yaml:"pediatric_mg_per_kg_day,omitempty"`
}

// IsAbove reports whether the evaluated dose exceeds its baseline.
func (e *DoseEvaluation) IsAbove() bool {
	return e != nil && e.Status == DoseAbove
}

// Clone returns a deep copy, or nil for a nil evaluation.
func (e *DoseEvaluation) Clone() *DoseEvaluation {
	if e == nil {
		return nil
	}
	c := *e
	c.DoseValue = cloneFloat(e.DoseValue)
	c.FreqPerDay = cloneFloat(e.FreqPerDay)
	c.PercentAbove = cloneFloat(e.PercentAbove)
	c.PediatricMgPerKgDay = cloneFloat(e.PediatricMgPerKgDay)
	return &c
}

// PairResult is the server's verdict for one unordered pair of drugs.
type PairResult struct {
	Drug1       string          `json:"drug1" yaml:"drug1"`
	Drug2       string          `json:"drug2" yaml:"drug2"`
	Found       bool            `json:"found" yaml:"found"`
	Prob        float64         `json:"prob" yaml:"prob"`
	ProbAdj     float64         `json:"prob_adj" yaml:"prob_adj"`
	Label       *int            `json:"label,omitempty" yaml:"label,omitempty"`
	Risk        RiskLevel       `json:"risk" yaml:"risk"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	DoseEvalA   *DoseEvaluation `json:"dose_eval_a,omitempty" yaml:"dose_eval_a,omitempty"`
	DoseEvalB   *DoseEvaluation `json:"dose_eval_b,omitempty" yaml:"dose_eval_b,omitempty"`
	Effects     []string        `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// Clone returns a deep copy of the pair.
func (p PairResult) Clone() PairResult {
	c := p
	if p.Label != nil {
		l := *p.Label
		c.Label = &l
	}
	c.DoseEvalA = p.DoseEvalA.Clone()
	c.DoseEvalB = p.DoseEvalB.Clone()
	if p.Effects != nil {
		c.Effects = append([]string(nil), p.Effects...)
	}
	return c
}

// SummaryResult aggregates risk over every pair of one assessment.
type SummaryResult struct {
	Level         string   `json:"level" yaml:"level"`
	RiskyPairs    int      `json:"risky_pairs" yaml:"risky_pairs"`
	TotalPairs    int      `json:"total_pairs" yaml:"total_pairs"`
	CombinedScore float64  `json:"combined_score" yaml:"combined_score"`
	PctRisky      *float64 `json:"pct_risky,omitempty" yaml:"pct_risky,omitempty"`
	AvgConfidence *float64 `json:"avg_confidence,omitempty" yaml:"avg_confidence,omitempty"`
	Color         string   `json:"color,omitempty" yaml:"color,omitempty"`
}

// Clone returns a deep copy of the summary.
func (s SummaryResult) Clone() SummaryResult {
	c := s
	c.PctRisky = cloneFloat(s.PctRisky)
	c.AvgConfidence = cloneFloat(s.AvgConfidence)
	return c
}

// AssessmentResponse is the decoded body of a successful predict call.
type AssessmentResponse struct {
	Summary SummaryResult `json:"summary"`
	Pairs   []PairResult  `json:"pairs"`
}

// HistoryItem is one past check as reported by the history endpoint.
type HistoryItem struct {
	Timestamp string        `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Drugs     []string      `json:"drugs" yaml:"drugs"`
	Summary   SummaryResult `json:"summary" yaml:"summary"`
}

// Reason is one human-readable justification attached to a pair, with the
// severity that selects its badge.
type Reason struct {
	Text     string   `json:"text" yaml:"text"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// ExportFile is a document produced by one of the export endpoints.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ClonePairs deep-copies a pair slice, preserving nil.
func ClonePairs(pairs []PairResult) []PairResult {
	if pairs == nil {
		return nil
	}
	out := make([]PairResult, len(pairs))
	for i, p := range pairs {
		out[i] = p.Clone()
	}
	return out
}
