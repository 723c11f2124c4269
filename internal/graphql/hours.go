package graphql

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// hoursValue decodes an hour count leniently: numbers and numeric strings
// are accepted, null or a missing key leaves present unset, and anything
// else is kept as NaN with valid unset.
type hoursValue struct {
	value   float64
	present bool
	valid   bool
}

func (h *hoursValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = hoursValue{}
		return nil
	}
	h.present = true

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		h.value, h.valid = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			h.value, h.valid = f, true
			return nil
		}
	}
	h.value, h.valid = math.NaN(), false
	return nil
}
