package forms

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

var (
	intPrefix   = regexp.MustCompile(`^([+-]?)(0[xX][0-9a-fA-F]+|[0-9]+)`)
	floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|[0-9]+\.?[0-9]*(?:[eE][+-]?[0-9]+)?|\.[0-9]+(?:[eE][+-]?[0-9]+)?)`)
)

// ParseInt reads the longest integer prefix of s after leading whitespace.
// "12abc" is 12, "-3.9" is -3, "0x1A" is 26. Input without a numeric prefix
// yields NaN.
func ParseInt(s string) models.Number {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := intPrefix.FindStringSubmatch(s)
	if m == nil {
		return models.NaN()
	}

	var v float64
	digits := m[2]
	if len(digits) > 2 && (digits[1] == 'x' || digits[1] == 'X') {
		u, err := strconv.ParseUint(digits[2:], 16, 64)
		if err != nil {
			return models.NaN()
		}
		v = float64(u)
	} else {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return models.NaN()
		}
		v = f
	}
	if m[1] == "-" {
		v = -v
	}
	return models.Number(v)
}

// ParseFloat reads the longest decimal prefix of s after leading whitespace.
func ParseFloat(s string) models.Number {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := floatPrefix.FindString(s)
	if m == "" {
		return models.NaN()
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return models.Number(math.Inf(-1))
		}
		return models.Number(math.Inf(1))
	}

	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return models.NaN()
	}
	// out of range values come back as ±Inf
	return models.Number(f)
}

// SplitList turns comma-separated text into trimmed, non-empty items.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList for prefilling edit forms.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}
