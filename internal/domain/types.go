// Package domain contains the core entities of the drug-drug interaction (DDI) check workflow:
// drug entries and patient attributes entered by the user, the request sent to the risk-assessment
// service, and the pairwise results it returns.
//
// The risk-assessment service owns every numeric score. Nothing in this package recomputes
// probabilities or risk levels; it only describes them.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Unit represents the unit a dose is expressed in.
type Unit string

const (
	UnitMilligram  Unit = "mg"
	UnitGram       Unit = "g"
	UnitMilliliter Unit = "mL"
	UnitMicrogram  Unit = "mcg"
	UnitIU         Unit = "IU"
)

// Units lists the supported dose units in display order.
var Units = []Unit{UnitMilligram, UnitGram, UnitMilliliter, UnitMicrogram, UnitIU}

// Route represents the administration route of a drug.
type Route string

const (
	RouteOral    Route = "oral"
	RouteIV      Route = "iv"
	RouteTopical Route = "topical"
)

// Routes lists the supported administration routes in display order.
var Routes = []Route{RouteOral, RouteIV, RouteTopical}

// DoseStatus is the server's verdict for one dose against its baseline.
type DoseStatus string

const (
	DoseAbove   DoseStatus = "above"
	DoseWithin  DoseStatus = "within"
	DoseBelow   DoseStatus = "below"
	DoseUnknown DoseStatus = "unknown"
)

// RiskLevel is the per-pair risk category assigned by the server.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Severity classifies a derived reason for badge rendering.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityDanger
)

var (
	ErrInvalidUnit  = errors.New("invalid dose unit")
	ErrInvalidRoute = errors.New("invalid administration route")
)

// Valid reports whether the unit is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case UnitMilligram, UnitGram, UnitMilliliter, UnitMicrogram, UnitIU:
		return true
	default:
		return false
	}
}

func (u Unit) String() string {
	return string(u)
}

// ParseUnit parses a unit case-insensitively ("ml" and "ML" both yield mL).
func ParseUnit(s string) (Unit, error) {
	needle := strings.TrimSpace(s)
	for _, u := range Units {
		if strings.EqualFold(string(u), needle) {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// Valid reports whether the route is one of the supported routes.
func (r Route) Valid() bool {
	switch r {
	case RouteOral, RouteIV, RouteTopical:
		return true
	default:
		return false
	}
}

func (r Route) String() string {
	return string(r)
}

// ParseRoute parses an administration route case-insensitively.
func ParseRoute(s string) (Route, error) {
	needle := strings.TrimSpace(s)
	for _, r := range Routes {
		if strings.EqualFold(string(r), needle) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRoute, s)
}

// IsValid reports whether the status is one the server is known to send.
func (s DoseStatus) IsValid() bool {
	switch s {
	case DoseAbove, DoseWithin, DoseBelow, DoseUnknown:
		return true
	default:
		return false
	}
}

// IsValid reports whether the risk level is a known category.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	default:
		return false
	}
}

// BadgeClass returns the badge class used for the pair risk label.
func (r RiskLevel) BadgeClass() string {
	switch r {
	case RiskHigh:
		return "bg-danger"
	case RiskModerate:
		return "bg-warning"
	default:
		return "bg-success"
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// BadgeClass maps the severity to its reason badge class.
func (s Severity) BadgeClass() string {
	return "badge-" + s.String()
}

// MarshalText encodes the severity by name so JSON and YAML output stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
