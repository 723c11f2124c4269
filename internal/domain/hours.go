package domain

import (
	"fmt"
	"math"
	"strings"
)

// HoursField selects which hour category of a worker entry is aggregated.
type HoursField string

const (
	HoursConsulting HoursField = "consulting"
	HoursHandsOn    HoursField = "hands_on"
	HoursSquad      HoursField = "squad"
	HoursInternal   HoursField = "internal"
)

// AllHoursFields lists the categories in tab order.
func AllHoursFields() []HoursField {
	return []HoursField{HoursConsulting, HoursHandsOn, HoursSquad, HoursInternal}
}

// ParseHoursField accepts the canonical names plus the GraphQL field
// spellings (consultingHours, handsOnHours, ...) and dashed variants.
func ParseHoursField(s string) (HoursField, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	norm = strings.TrimSuffix(norm, "hours")
	norm = strings.TrimPrefix(norm, "total")

	switch norm {
	case "consulting":
		return HoursConsulting, nil
	case "handson":
		return HoursHandsOn, nil
	case "squad":
		return HoursSquad, nil
	case "internal":
		return HoursInternal, nil
	}
	return "", fmt.Errorf("unknown hours field %q (want consulting, hands_on, squad or internal)", s)
}

// Label returns the human-facing name of the category.
func (f HoursField) Label() string {
	switch f {
	case HoursConsulting:
		return "Consulting"
	case HoursHandsOn:
		return "Hands-On"
	case HoursSquad:
		return "Squad"
	case HoursInternal:
		return "Internal"
	default:
		return string(f)
	}
}

// Of returns the hours w logged in category f. Non-finite values count as 0.
func (f HoursField) Of(w WorkerHours) float64 {
	var v float64
	switch f {
	case HoursConsulting:
		v = w.ConsultingHours
	case HoursHandsOn:
		v = w.HandsOnHours
	case HoursSquad:
		v = w.SquadHours
	case HoursInternal:
		v = w.InternalHours
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
