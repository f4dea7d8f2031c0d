package console

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ddi-checker/internal/domain"
)

// ParseDrugSpec parses a drug written as "Name[:key=value,...]", for example
// "Aspirin:dose=100,unit=mg,freq=2,route=oral". Unset fields carry the list
// defaults; the returned entry has no id.
func ParseDrugSpec(s string) (domain.DrugEntry, error) {
	entry := domain.NewDrugEntry()
	entry.ID = domain.EntryID{}

	name, fields, hasFields := strings.Cut(s, ":")
	entry.Name = strings.TrimSpace(name)
	if entry.Name == "" {
		return domain.DrugEntry{}, fmt.Errorf("drug name is required in %q", s)
	}
	if !hasFields {
		return entry, nil
	}

	for _, field := range strings.Split(fields, ",") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return domain.DrugEntry{}, fmt.Errorf("invalid field %q: expected key=value", field)
		}
		if err := ApplyField(&entry, key, value); err != nil {
			return domain.DrugEntry{}, err
		}
	}
	return entry, nil
}

// ApplyField sets one named field of an entry from text. A dose of "" or
// "none" clears the dose.
func ApplyField(entry *domain.DrugEntry, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "name":
		entry.Name = value
	case "dose":
		if value == "" || strings.EqualFold(value, "none") {
			entry.Dose = nil
			return nil
		}
		dose, err := parseNonNegative("dose", value)
		if err != nil {
			return err
		}
		entry.Dose = domain.Float(dose)
	case "unit":
		unit, err := domain.ParseUnit(value)
		if err != nil {
			return err
		}
		entry.Unit = unit
	case "freq", "frequency":
		freq, err := parseNonNegative("freq", value)
		if err != nil {
			return err
		}
		entry.Freq = freq
	case "route":
		route, err := domain.ParseRoute(value)
		if err != nil {
			return err
		}
		entry.Route = route
	default:
		return fmt.Errorf("unknown field %q (name, dose, unit, freq, route)", key)
	}
	return nil
}

func parseNonNegative(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q: must be a finite number", field, value)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, value)
	}
	return v, nil
}
