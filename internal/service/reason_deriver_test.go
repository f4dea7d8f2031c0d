package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ddi-checker/internal/domain"
)

func eval(status domain.DoseStatus, comment string) *domain.DoseEvaluation {
	return &domain.DoseEvaluation{Status: status, Comment: comment}
}

func TestDeriveReasons(t *testing.T) {
	tests := []struct {
		name string
		pair domain.PairResult
		want []domain.Reason
	}{
		{
			name: "model probability with dose A above",
			pair: domain.PairResult{Prob: 0.92, DoseEvalA: eval(domain.DoseAbove, ""), DoseEvalB: eval(domain.DoseWithin, "")},
			want: []domain.Reason{
				{Text: ReasonHighProbability, Severity: domain.SeverityDanger},
				{Text: ReasonDoseAAbove, Severity: domain.SeverityDanger},
			},
		},
		{
			name: "known interaction",
			pair: domain.PairResult{Found: true, DoseEvalA: eval(domain.DoseWithin, ""), DoseEvalB: eval(domain.DoseWithin, "")},
			want: []domain.Reason{
				{Text: ReasonKnownInteraction, Severity: domain.SeverityInfo},
			},
		},
		{
			name: "known interaction ignores probability",
			pair: domain.PairResult{Found: true, Prob: 0.99},
			want: []domain.Reason{
				{Text: ReasonKnownInteraction, Severity: domain.SeverityInfo},
			},
		},
		{
			name: "known interaction with both doses above",
			pair: domain.PairResult{Found: true, DoseEvalA: eval(domain.DoseAbove, ""), DoseEvalB: eval(domain.DoseAbove, "")},
			want: []domain.Reason{
				{Text: ReasonKnownInteraction, Severity: domain.SeverityInfo},
				{Text: ReasonDoseAAbove, Severity: domain.SeverityDanger},
				{Text: ReasonDoseBAbove, Severity: domain.SeverityDanger},
			},
		},
		{
			name: "only dose B above",
			pair: domain.PairResult{Prob: 0.1, DoseEvalB: eval(domain.DoseAbove, "")},
			want: []domain.Reason{
				{Text: ReasonLowProbability, Severity: domain.SeverityInfo},
				{Text: ReasonDoseBAbove, Severity: domain.SeverityDanger},
			},
		},
		{
			name: "comment text is not inspected",
			pair: domain.PairResult{Prob: 0.5, DoseEvalA: eval(domain.DoseWithin, "well above the usual dose")},
			want: []domain.Reason{
				{Text: ReasonLowProbability, Severity: domain.SeverityInfo},
			},
		},
		{
			name: "adjusted probability is not used",
			pair: domain.PairResult{Prob: 0.2, ProbAdj: 0.95},
			want: []domain.Reason{
				{Text: ReasonLowProbability, Severity: domain.SeverityInfo},
			},
		},
		{
			name: "missing dose evaluations",
			pair: domain.PairResult{Prob: 0.8},
			want: []domain.Reason{
				{Text: ReasonModerateProb, Severity: domain.SeverityWarning},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveReasons(tt.pair))
		})
	}
}

func TestDeriveReasons_ProbabilityBands(t *testing.T) {
	tests := []struct {
		prob     float64
		want     string
		severity domain.Severity
	}{
		{1.0, ReasonHighProbability, domain.SeverityDanger},
		{0.9, ReasonHighProbability, domain.SeverityDanger},
		{0.8999, ReasonModerateProb, domain.SeverityWarning},
		{0.7, ReasonModerateProb, domain.SeverityWarning},
		{0.6999, ReasonLowProbability, domain.SeverityInfo},
		{0, ReasonLowProbability, domain.SeverityInfo},
	}

	for _, tt := range tests {
		reasons := DeriveReasons(domain.PairResult{Prob: tt.prob})
		if assert.Len(t, reasons, 1, "prob %v", tt.prob) {
			assert.Equal(t, tt.want, reasons[0].Text, "prob %v", tt.prob)
			assert.Equal(t, tt.severity, reasons[0].Severity, "prob %v", tt.prob)
		}
	}
}

func TestDeriveReasons_Deterministic(t *testing.T) {
	pair := domain.PairResult{Prob: 0.92, DoseEvalA: eval(domain.DoseAbove, ""), DoseEvalB: eval(domain.DoseWithin, "")}

	first := DeriveReasons(pair)
	DeriveReasons(domain.PairResult{Found: true})
	second := DeriveReasons(pair)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.DoseAbove, pair.DoseEvalA.Status, "input is not modified")
}
