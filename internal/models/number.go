package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Number is a form-sourced numeric value. Malformed input is kept as NaN and
// travels over the wire as JSON null.
type Number float64

func NaN() Number {
	return Number(math.NaN())
}

func (n Number) IsNaN() bool {
	return math.IsNaN(float64(n))
}

func (n Number) Float() float64 {
	return float64(n)
}

func (n Number) Int() int {
	if n.IsNaN() || math.IsInf(float64(n), 0) {
		return 0
	}
	return int(n)
}

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}
