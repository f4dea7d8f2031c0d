package service

import (
	"github.com/ddi-checker/internal/domain"
)

// Probability band thresholds, applied to the raw model probability.
const (
	HighProbabilityThreshold     = 0.9
	ModerateProbabilityThreshold = 0.7
)

// Reason texts
const (
	ReasonKnownInteraction = "Known interaction in dataset"
	ReasonHighProbability  = "High ML probability"
	ReasonModerateProb     = "Moderate ML probability"
	ReasonLowProbability   = "Low ML probability"
	ReasonDoseAAbove       = "Dose A above baseline"
	ReasonDoseBAbove       = "Dose B above baseline"
)

// reasonRule contributes zero or one reason for a pair.
type reasonRule func(pair *domain.PairResult) (domain.Reason, bool)

// reasonRules run in order; the output keeps that order.
var reasonRules = []reasonRule{
	probabilityReason,
	doseAboveReason(ReasonDoseAAbove, func(p *domain.PairResult) *domain.DoseEvaluation { return p.DoseEvalA }),
	doseAboveReason(ReasonDoseBAbove, func(p *domain.PairResult) *domain.DoseEvaluation { return p.DoseEvalB }),
}

// DeriveReasons maps one pair to its ordered, classified reasons. It is pure:
// the same pair always yields the same sequence.
func DeriveReasons(pair domain.PairResult) []domain.Reason {
	reasons := make([]domain.Reason, 0, len(reasonRules))
	for _, rule := range reasonRules {
		if r, ok := rule(&pair); ok {
			reasons = append(reasons, r)
		}
	}
	return reasons
}

// probabilityReason yields the dataset reason for known pairs, otherwise
// exactly one band on prob. prob_adj never takes part.
func probabilityReason(pair *domain.PairResult) (domain.Reason, bool) {
	switch {
	case pair.Found:
		return domain.Reason{Text: ReasonKnownInteraction, Severity: domain.SeverityInfo}, true
	case pair.Prob >= HighProbabilityThreshold:
		return domain.Reason{Text: ReasonHighProbability, Severity: domain.SeverityDanger}, true
	case pair.Prob >= ModerateProbabilityThreshold:
		return domain.Reason{Text: ReasonModerateProb, Severity: domain.SeverityWarning}, true
	default:
		return domain.Reason{Text: ReasonLowProbability, Severity: domain.SeverityInfo}, true
	}
}

func doseAboveReason(text string, eval func(*domain.PairResult) *domain.DoseEvaluation) reasonRule {
	return func(pair *domain.PairResult) (domain.Reason, bool) {
		if !eval(pair).IsAbove() {
			return domain.Reason{}, false
		}
		return domain.Reason{Text: text, Severity: domain.SeverityDanger}, true
	}
}
