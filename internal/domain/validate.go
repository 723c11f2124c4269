package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidHours is wrapped by every ValidationError.
var ErrInvalidHours = errors.New("invalid hours value")

// ValidationError describes one rejected hour value.
type ValidationError struct {
	Path  string // e.g. `case "Audit" worker "Ana"`
	Field HoursField
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s hours: %v is not a valid hour count", e.Path, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidHours }

// Validate rejects negative and non-finite hour values in every category.
func (r CaseTimeRecord) Validate() error {
	var errs []error
	for _, w := range r.PerWorkerHours {
		path := fmt.Sprintf("case %q worker %q", r.Title, w.WorkerName)
		for _, f := range AllHoursFields() {
			v := rawHours(w, f)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				errs = append(errs, &ValidationError{Path: path, Field: f, Value: v})
			}
		}
	}
	return errors.Join(errs...)
}

// ValidateRecords validates every record and joins the failures.
func ValidateRecords(records []CaseTimeRecord) error {
	var errs []error
	for _, r := range records {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func rawHours(w WorkerHours, f HoursField) float64 {
	switch f {
	case HoursConsulting:
		return w.ConsultingHours
	case HoursHandsOn:
		return w.HandsOnHours
	case HoursSquad:
		return w.SquadHours
	case HoursInternal:
		return w.InternalHours
	default:
		return 0
	}
}
