package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		kind     ValidationKind
		sentinel error
		message  string
	}{
		{
			name:     "Too few drugs",
			kind:     TooFewDrugs,
			sentinel: ErrTooFewDrugs,
			message:  "Enter at least two drugs",
		},
		{
			name:     "Missing pediatric weight",
			kind:     MissingPediatricWeight,
			sentinel: ErrMissingPediatricWeight,
			message:  "Pediatric mode requires patient weight (kg).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.kind)

			assert.Equal(t, tt.message, err.Error())
			assert.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), tt.sentinel)
		})
	}

	assert.NotErrorIs(t, NewValidationError(TooFewDrugs), ErrMissingPediatricWeight)
}

func TestRequestError(t *testing.T) {
	t.Run("server error keeps message", func(t *testing.T) {
		err := NewServerError("/predict", http.StatusBadRequest, "Enter at least two drugs with names and dose info.")

		assert.True(t, IsServerError(err))
		assert.False(t, IsNetworkError(err))
		assert.Equal(t, "Enter at least two drugs with names and dose info.", err.UserMessage())
		assert.Contains(t, err.Error(), "400")
	})

	t.Run("server error falls back to status text", func(t *testing.T) {
		err := NewServerError("/predict", http.StatusInternalServerError, "")

		assert.Equal(t, "Internal Server Error", err.Message)
	})

	t.Run("network error unwraps cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewNetworkError("/history", cause)

		assert.True(t, IsNetworkError(fmt.Errorf("fetch: %w", err)))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "Could not reach the interaction service", err.UserMessage())
	})
}

func TestUnitAndRouteParsing(t *testing.T) {
	tests := []struct {
		input string
		unit  Unit
		ok    bool
	}{
		{"mg", UnitMilligram, true},
		{"ML", UnitMilliliter, true},
		{" iu ", UnitIU, true},
		{"mcg", UnitMicrogram, true},
		{"tablet", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, err := ParseUnit(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidUnit)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.unit, u)
			assert.True(t, u.Valid())
		})
	}

	r, err := ParseRoute("IV")
	assert.NoError(t, err)
	assert.Equal(t, RouteIV, r)

	_, err = ParseRoute("inhaled")
	assert.ErrorIs(t, err, ErrInvalidRoute)
}

func TestSeverityBadgeClass(t *testing.T) {
	assert.Equal(t, "badge-info", SeverityInfo.BadgeClass())
	assert.Equal(t, "badge-warning", SeverityWarning.BadgeClass())
	assert.Equal(t, "badge-danger", SeverityDanger.BadgeClass())

	text, err := SeverityDanger.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "danger", string(text))
}

func TestServerEnumsValid(t *testing.T) {
	for _, s := range []DoseStatus{DoseAbove, DoseWithin, DoseBelow, DoseUnknown} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, DoseStatus("ABOVE").IsValid())

	for _, r := range []RiskLevel{RiskLow, RiskModerate, RiskHigh} {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, RiskLevel("Severe").IsValid())
	assert.Equal(t, "bg-success", RiskLevel("Severe").BadgeClass())
}

func TestPairResultClone(t *testing.T) {
	label := 1
	original := PairResult{
		Drug1:     "Aspirin",
		Drug2:     "Warfarin",
		Label:     &label,
		DoseEvalA: &DoseEvaluation{Status: DoseAbove, PercentAbove: Float(25)},
		Effects:   []string{"bleeding"},
	}

	clone := original.Clone()
	*clone.Label = 0
	clone.DoseEvalA.Status = DoseWithin
	*clone.DoseEvalA.PercentAbove = 0
	clone.Effects[0] = "changed"

	assert.Equal(t, 1, *original.Label)
	assert.Equal(t, DoseAbove, original.DoseEvalA.Status)
	assert.Equal(t, 25.0, *original.DoseEvalA.PercentAbove)
	assert.Equal(t, "bleeding", original.Effects[0])
	assert.Nil(t, clone.DoseEvalB)
}
