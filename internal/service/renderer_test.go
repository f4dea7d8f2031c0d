package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddi-checker/internal/domain"
)

func aspirinWarfarin() *domain.AssessmentResponse {
	label := 1
	return &domain.AssessmentResponse{
		Summary: domain.SummaryResult{Level: "High", RiskyPairs: 1, TotalPairs: 1, CombinedScore: 0.85},
		Pairs: []domain.PairResult{{
			Drug1: "Aspirin", Drug2: "Warfarin",
			Found: true, Prob: 1, ProbAdj: 1, Label: &label, Risk: domain.RiskHigh,
			DoseEvalA: eval(domain.DoseWithin, "ok"),
			DoseEvalB: eval(domain.DoseWithin, "ok"),
		}},
	}
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(0)
	model := r.Render(aspirinWarfarin())

	assert.Equal(t, "High — 1/1 risky pairs", model.Summary.Headline)
	assert.Equal(t, "85.0%", model.Summary.CombinedScore)

	require.Len(t, model.Pairs, 1)
	pv := model.Pairs[0]
	assert.Equal(t, "Aspirin + Warfarin", pv.Title())
	assert.Equal(t, []domain.Reason{{Text: ReasonKnownInteraction, Severity: domain.SeverityInfo}}, pv.Reasons)
	assert.Equal(t, "100.00%", pv.ProbPercent)
	assert.Equal(t, "100.00%", pv.ProbAdjPercent)
	assert.Equal(t, "bg-danger", pv.RiskBadge)
	assert.Equal(t, "ok", pv.DoseNoteA)
	assert.Equal(t, "ok", pv.DoseNoteB)
	assert.NotNil(t, pv.Effects)
	assert.Empty(t, pv.Effects)
}

func TestRenderer_MissingOptionalFields(t *testing.T) {
	resp := &domain.AssessmentResponse{
		Summary: domain.SummaryResult{Level: "Low", TotalPairs: 1, CombinedScore: 0.1234},
		Pairs: []domain.PairResult{{
			Drug1: "Ibuprofen", Drug2: "Paracetamol", Prob: 0.12346, ProbAdj: 0.2, Risk: domain.RiskLow,
			DoseEvalB: eval(domain.DoseUnknown, "   "),
		}},
	}

	model := NewRenderer(6).Render(resp)

	require.Len(t, model.Pairs, 1)
	pv := model.Pairs[0]
	assert.Equal(t, NoDoseInfo, pv.DoseNoteA)
	assert.Equal(t, NoDoseInfo, pv.DoseNoteB)
	assert.Equal(t, []string{}, pv.Effects)
	assert.Equal(t, "12.35%", pv.ProbPercent)
	assert.Equal(t, "20.00%", pv.ProbAdjPercent)
	assert.Equal(t, "bg-success", pv.RiskBadge)
	assert.Equal(t, "12.3%", model.Summary.CombinedScore)
}

func TestRenderer_Idempotent(t *testing.T) {
	resp := aspirinWarfarin()
	resp.Pairs[0].Effects = []string{"bleeding"}
	r := NewRenderer(6)

	first := r.Render(resp)
	second := r.Render(resp)
	assert.Equal(t, first, second)
}

func TestRenderer_ModelIsDetached(t *testing.T) {
	resp := aspirinWarfarin()
	resp.Pairs[0].Effects = []string{"bleeding"}
	model := NewRenderer(6).Render(resp)

	resp.Summary.Level = "Low"
	resp.Pairs[0].Drug1 = "changed"
	resp.Pairs[0].DoseEvalA.Status = domain.DoseAbove
	resp.Pairs[0].Effects[0] = "changed"
	*resp.Pairs[0].Label = 0

	assert.Equal(t, "High", model.Summary.Result.Level)
	assert.Equal(t, "Aspirin", model.Pairs[0].Pair.Drug1)
	assert.Equal(t, domain.DoseWithin, model.Pairs[0].Pair.DoseEvalA.Status)
	assert.Equal(t, []string{"bleeding"}, model.Pairs[0].Effects)
	assert.Equal(t, 1, *model.Pairs[0].Pair.Label)
}

func TestRenderer_RenderNil(t *testing.T) {
	model := NewRenderer(6).Render(nil)
	require.NotNil(t, model)
	assert.Empty(t, model.Pairs)
}

func TestRenderer_RenderHistory(t *testing.T) {
	r := NewRenderer(6)

	t.Run("truncated newest first", func(t *testing.T) {
		items := make([]domain.HistoryItem, 10)
		for i := range items {
			items[i] = domain.HistoryItem{
				Drugs:   []string{fmt.Sprintf("Drug%d", i), "Warfarin"},
				Summary: domain.SummaryResult{Level: "Moderate", CombinedScore: 0.456},
			}
		}

		view := r.RenderHistory(items, nil)
		assert.False(t, view.Unavailable)
		require.Len(t, view.Items, DefaultHistoryLimit)
		assert.Equal(t, "Drug0, Warfarin", view.Items[0].Label)
		assert.Equal(t, "45.6%", view.Items[0].CombinedScore)
		assert.Equal(t, "Moderate", view.Items[0].Level)
	})

	t.Run("empty is not unavailable", func(t *testing.T) {
		view := r.RenderHistory([]domain.HistoryItem{}, nil)
		assert.False(t, view.Unavailable)
		assert.True(t, view.Empty())
	})

	t.Run("failure is unavailable", func(t *testing.T) {
		view := r.RenderHistory(nil, errors.New("boom"))
		assert.True(t, view.Unavailable)
		assert.False(t, view.Empty())
	})

	t.Run("custom limit", func(t *testing.T) {
		items := make([]domain.HistoryItem, 4)
		view := NewRenderer(2).RenderHistory(items, nil)
		assert.Len(t, view.Items, 2)
	})
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "85.0%", FormatPercent(0.85, 1))
	assert.Equal(t, "0.0%", FormatPercent(0, 1))
	assert.Equal(t, "70.00%", FormatPercent(0.7, 2))
	assert.Equal(t, "69.99%", FormatPercent(0.6999, 2))
}
