package domain

import (
	"strings"

	"github.com/google/uuid"
)

// EntryID identifies a drug entry for the lifetime of an entry list.
type EntryID = uuid.UUID

// DrugEntry is one row of the drug list as edited by the user.
type DrugEntry struct {
	ID    EntryID  `json:"-" yaml:"-"`
	Name  string   `json:"name" yaml:"name"`
	Dose  *float64 `json:"dose" yaml:"dose,omitempty"`
	Unit  Unit     `json:"unit" yaml:"unit"`
	Freq  float64  `json:"freq" yaml:"freq"` // doses per day
	Route Route    `json:"route" yaml:"route"`
}

// NewDrugEntry returns an entry carrying the list defaults.
func NewDrugEntry() DrugEntry {
	return DrugEntry{
		ID:    uuid.New(),
		Unit:  UnitMilligram,
		Freq:  1,
		Route: RouteOral,
	}
}

// TrimmedName returns the name with surrounding whitespace removed.
func (d DrugEntry) TrimmedName() string {
	return strings.TrimSpace(d.Name)
}

// Clone returns a copy that shares no pointers with d.
func (d DrugEntry) Clone() DrugEntry {
	c := d
	c.Dose = cloneFloat(d.Dose)
	return c
}

// PatientContext carries the optional pediatric attributes of the patient.
type PatientContext struct {
	IsPediatric bool     `json:"is_pediatric"`
	Age         *float64 `json:"age"`
	WeightKg    *float64 `json:"weight_kg"`
}

// HasValidWeight reports whether a usable body weight is present.
func (p PatientContext) HasValidWeight() bool {
	return p.WeightKg != nil && *p.WeightKg > 0
}

// Clone returns a copy that shares no pointers with p.
func (p PatientContext) Clone() PatientContext {
	return PatientContext{
		IsPediatric: p.IsPediatric,
		Age:         cloneFloat(p.Age),
		WeightKg:    cloneFloat(p.WeightKg),
	}
}

// RequestPayload is the body of a predict request. It is built by value and
// never mutated after it has been handed to the client.
type RequestPayload struct {
	Drugs       []DrugEntry `json:"drugs"`
	IsPediatric bool        `json:"is_pediatric"`
	Age         *float64    `json:"age"`
	WeightKg    *float64    `json:"weight_kg"`
}

// DrugNames returns the names of the drugs in request order.
func (r *RequestPayload) DrugNames() []string {
	names := make([]string, len(r.Drugs))
	for i, d := range r.Drugs {
		names[i] = d.Name
	}
	return names
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
