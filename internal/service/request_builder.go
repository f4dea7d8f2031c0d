package service

import (
	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/metrics"
)

// minDrugs is the smallest list that forms at least one pair.
const minDrugs = 2

// BuildRequest validates the entries and patient attributes and assembles the
// predict payload. A failure returns a *domain.ValidationError and nothing is
// sent. Rules are checked in order: drug count first, then pediatric weight.
func BuildRequest(entries *EntryList, patient domain.PatientContext) (*domain.RequestPayload, error) {
	drugs := entries.Snapshot()

	if len(drugs) < minDrugs {
		return nil, validationFailed(domain.TooFewDrugs)
	}

	if patient.IsPediatric && !patient.HasValidWeight() {
		return nil, validationFailed(domain.MissingPediatricWeight)
	}

	p := patient.Clone()
	return &domain.RequestPayload{
		Drugs:       drugs,
		IsPediatric: p.IsPediatric,
		Age:         p.Age,
		WeightKg:    p.WeightKg,
	}, nil
}

func validationFailed(kind domain.ValidationKind) error {
	metrics.ValidationFailures.WithLabelValues(string(kind)).Inc()
	return domain.NewValidationError(kind)
}
