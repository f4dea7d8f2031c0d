package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ddi-checker/internal/archive"
	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/service"
)

func sampleModel() *service.DisplayModel {
	return service.NewRenderer(6).Render(&domain.AssessmentResponse{
		Summary: domain.SummaryResult{Level: "High", RiskyPairs: 1, TotalPairs: 1, CombinedScore: 0.85},
		Pairs: []domain.PairResult{{
			Drug1: "Aspirin", Drug2: "Warfarin", Prob: 0.92, ProbAdj: 0.95, Risk: domain.RiskHigh,
			DoseEvalA: &domain.DoseEvaluation{Status: domain.DoseAbove, Comment: "Dose 25% above baseline"},
			Effects:   []string{"bleeding", "bruising"},
		}},
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleModel(), FormatText))

	out := buf.String()
	assert.Contains(t, out, "High — 1/1 risky pairs")
	assert.Contains(t, out, "85.0%")
	assert.Contains(t, out, "1. Aspirin + Warfarin")
	assert.Contains(t, out, "ML prob: 92.00% → adjusted: 95.00%")
	assert.Contains(t, out, "[danger] High ML probability")
	assert.Contains(t, out, "[danger] Dose A above baseline")
	assert.Contains(t, out, "Dose 25% above baseline")
	assert.Contains(t, out, service.NoDoseInfo)
	assert.Contains(t, out, "bleeding, bruising")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleModel(), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	pairs := decoded["pairs"].([]any)
	require.Len(t, pairs, 1)
	reasons := pairs[0].(map[string]any)["reasons"].([]any)
	assert.Equal(t, "danger", reasons[0].(map[string]any)["severity"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleModel(), FormatYAML))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, "85.0%", summary["combined_score"])
}

func TestWrite_NilModel(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, nil, FormatText))
}

func TestWriteHistory(t *testing.T) {
	r := service.NewRenderer(6)

	tests := []struct {
		name string
		view service.HistoryView
		want string
	}{
		{"unavailable", r.RenderHistory(nil, assert.AnError), "History unavailable"},
		{"empty", r.RenderHistory([]domain.HistoryItem{}, nil), "No recent checks"},
		{
			"items",
			r.RenderHistory([]domain.HistoryItem{{Drugs: []string{"Aspirin", "Warfarin"}, Summary: domain.SummaryResult{Level: "High", CombinedScore: 0.85}}}, nil),
			"Aspirin, Warfarin  High (85.0%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteHistory(&buf, tt.view, FormatText))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestWriteRecords(t *testing.T) {
	record := archive.NewRecord([]string{"Aspirin", "Warfarin"}, true,
		domain.SummaryResult{Level: "High", RiskyPairs: 1, TotalPairs: 1, CombinedScore: 0.85}, nil)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteRecords(&buf, []*archive.Record{record}, 3, FormatText))

		out := buf.String()
		assert.Contains(t, out, record.ID.String())
		assert.Contains(t, out, "Aspirin + Warfarin (pediatric)")
		assert.Contains(t, out, "85.0%")
		assert.Contains(t, out, "1 of 3 reports")
	})

	t.Run("empty text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteRecords(&buf, nil, 0, FormatText))
		assert.Equal(t, "No archived reports\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteRecords(&buf, nil, 0, FormatJSON))
		assert.JSONEq(t, "[]", buf.String())
	})
}
