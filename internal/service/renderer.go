package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ddi-checker/internal/domain"
)

// DefaultHistoryLimit is the number of past checks shown in the history panel.
const DefaultHistoryLimit = 6

// NoDoseInfo replaces a missing dose evaluation or an empty comment.
const NoDoseInfo = "No baseline dosing info available"

// Percent precision: summary scores use one decimal, pair probabilities two.
const (
	SummaryPercentDecimals = 1
	PairPercentDecimals    = 2
)

// DisplayModel is one rendered report. It owns deep copies of the pairs and
// summary it was built from; exports read from it, never from the server.
type DisplayModel struct {
	Summary SummaryView `json:"summary" yaml:"summary"`
	Pairs   []PairView  `json:"pairs" yaml:"pairs"`
}

// SummaryView is the rendered summary card.
type SummaryView struct {
	Result        domain.SummaryResult `json:"result" yaml:"result"`
	Headline      string               `json:"headline" yaml:"headline"`
	CombinedScore string               `json:"combined_score" yaml:"combined_score"`
}

// PairView is one rendered pair card.
type PairView struct {
	Pair           domain.PairResult `json:"pair" yaml:"pair"`
	Reasons        []domain.Reason   `json:"reasons" yaml:"reasons"`
	Effects        []string          `json:"effects" yaml:"effects"`
	ProbPercent    string            `json:"prob_percent" yaml:"prob_percent"`
	ProbAdjPercent string            `json:"prob_adj_percent" yaml:"prob_adj_percent"`
	RiskBadge      string            `json:"risk_badge" yaml:"risk_badge"`
	DoseNoteA      string            `json:"dose_note_a" yaml:"dose_note_a"`
	DoseNoteB      string            `json:"dose_note_b" yaml:"dose_note_b"`
}

// Title returns "drug1 + drug2".
func (p PairView) Title() string {
	return p.Pair.Drug1 + " + " + p.Pair.Drug2
}

// ExportPairs returns a copy of the displayed pairs for an export request.
func (m *DisplayModel) ExportPairs() []domain.PairResult {
	pairs := make([]domain.PairResult, len(m.Pairs))
	for i, pv := range m.Pairs {
		pairs[i] = pv.Pair.Clone()
	}
	return pairs
}

// Clone returns a deep copy of the model, or nil for a nil model.
func (m *DisplayModel) Clone() *DisplayModel {
	if m == nil {
		return nil
	}
	c := &DisplayModel{Summary: m.Summary, Pairs: make([]PairView, len(m.Pairs))}
	c.Summary.Result = m.Summary.Result.Clone()
	for i, pv := range m.Pairs {
		pv.Pair = pv.Pair.Clone()
		pv.Reasons = append([]domain.Reason{}, pv.Reasons...)
		pv.Effects = append([]string{}, pv.Effects...)
		c.Pairs[i] = pv
	}
	return c
}

// ExportSummary returns a copy of the displayed summary for an export request.
func (m *DisplayModel) ExportSummary() domain.SummaryResult {
	return m.Summary.Result.Clone()
}

// HistoryView is the rendered history panel. Unavailable and empty are
// distinct states.
type HistoryView struct {
	Unavailable bool               `json:"unavailable" yaml:"unavailable"`
	Items       []HistoryEntryView `json:"items" yaml:"items"`
}

// Empty reports a successful fetch that returned no checks.
func (h HistoryView) Empty() bool {
	return !h.Unavailable && len(h.Items) == 0
}

// HistoryEntryView is one line of the history panel.
type HistoryEntryView struct {
	Timestamp     string   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Drugs         []string `json:"drugs" yaml:"drugs"`
	Label         string   `json:"label" yaml:"label"`
	Level         string   `json:"level" yaml:"level"`
	CombinedScore string   `json:"combined_score" yaml:"combined_score"`
}

// Renderer projects assessment responses and history into display models.
type Renderer struct {
	historyLimit int
}

// NewRenderer creates a renderer showing at most historyLimit past checks.
func NewRenderer(historyLimit int) *Renderer {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Renderer{historyLimit: historyLimit}
}

// Render builds a fresh display model. Rendering the same response twice
// yields equal models, and the model shares no memory with resp.
func (r *Renderer) Render(resp *domain.AssessmentResponse) *DisplayModel {
	if resp == nil {
		return &DisplayModel{Pairs: []PairView{}}
	}

	summary := resp.Summary.Clone()
	model := &DisplayModel{
		Summary: SummaryView{
			Result:        summary,
			Headline:      fmt.Sprintf("%s — %d/%d risky pairs", summary.Level, summary.RiskyPairs, summary.TotalPairs),
			CombinedScore: FormatPercent(summary.CombinedScore, SummaryPercentDecimals),
		},
		Pairs: make([]PairView, 0, len(resp.Pairs)),
	}

	for _, p := range resp.Pairs {
		model.Pairs = append(model.Pairs, renderPair(p.Clone()))
	}
	return model
}

func renderPair(pair domain.PairResult) PairView {
	effects := append([]string{}, pair.Effects...)
	return PairView{
		Pair:           pair,
		Reasons:        DeriveReasons(pair),
		Effects:        effects,
		ProbPercent:    FormatPercent(pair.Prob, PairPercentDecimals),
		ProbAdjPercent: FormatPercent(pair.ProbAdj, PairPercentDecimals),
		RiskBadge:      pair.Risk.BadgeClass(),
		DoseNoteA:      doseNote(pair.DoseEvalA),
		DoseNoteB:      doseNote(pair.DoseEvalB),
	}
}

func doseNote(eval *domain.DoseEvaluation) string {
	if eval == nil || strings.TrimSpace(eval.Comment) == "" {
		return NoDoseInfo
	}
	return eval.Comment
}

// RenderHistory builds the history panel from a fetch result. A non-nil err
// renders the unavailable state regardless of items.
func (r *Renderer) RenderHistory(items []domain.HistoryItem, err error) HistoryView {
	if err != nil {
		return HistoryView{Unavailable: true, Items: []HistoryEntryView{}}
	}

	n := len(items)
	if n > r.historyLimit {
		n = r.historyLimit
	}

	view := HistoryView{Items: make([]HistoryEntryView, 0, n)}
	for _, item := range items[:n] {
		drugs := append([]string{}, item.Drugs...)
		view.Items = append(view.Items, HistoryEntryView{
			Timestamp:     item.Timestamp,
			Drugs:         drugs,
			Label:         strings.Join(drugs, ", "),
			Level:         item.Summary.Level,
			CombinedScore: FormatPercent(item.Summary.CombinedScore, SummaryPercentDecimals),
		})
	}
	return view
}

// FormatPercent renders a [0,1] value as a percentage with a fixed number of decimals.
func FormatPercent(v float64, decimals int) string {
	return strconv.FormatFloat(v*100, 'f', decimals, 64) + "%"
}
