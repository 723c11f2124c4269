package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts accepted by the backend. The timesheet endpoint takes
// DD-MM-YYYY; others take ISO dates.
const (
	DateLayoutDMY = "02-01-2006"
	DateLayoutISO = "2006-01-02"
)

// Filter restricts a query to rows whose Field matches one of SelectedValues.
type Filter struct {
	Field          string
	SelectedValues []string
}

// ParseFilter parses "field=v1,v2".
func ParseFilter(s string) (Filter, error) {
	field, values, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return Filter{}, fmt.Errorf("filter %q: want field=value[,value...]", s)
	}
	var selected []string
	for _, v := range strings.Split(values, ",") {
		if v = strings.TrimSpace(v); v != "" {
			selected = append(selected, v)
		}
	}
	if len(selected) == 0 {
		return Filter{}, fmt.Errorf("filter %q: no values selected", s)
	}
	return Filter{Field: field, SelectedValues: selected}, nil
}

func (f Filter) String() string {
	return f.Field + "=" + strings.Join(f.SelectedValues, ",")
}

// DateRange is an inclusive period. Zero bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDate accepts either DD-MM-YYYY or YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayoutISO, DateLayoutDMY} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: use YYYY-MM-DD or DD-MM-YYYY", s)
}

// ParseDateRange parses optional start and end strings.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, err := ParseDate(start)
		if err != nil {
			return DateRange{}, err
		}
		r.Start = &t
	}
	if end != "" {
		t, err := ParseDate(end)
		if err != nil {
			return DateRange{}, err
		}
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return DateRange{}, fmt.Errorf("date range: end %s is before start %s",
			r.End.Format(DateLayoutISO), r.Start.Format(DateLayoutISO))
	}
	return r, nil
}

// Format renders both bounds in layout; open bounds render as "".
func (r DateRange) Format(layout string) (string, string) {
	var s, e string
	if r.Start != nil {
		s = r.Start.Format(layout)
	}
	if r.End != nil {
		e = r.End.Format(layout)
	}
	return s, e
}

func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}
