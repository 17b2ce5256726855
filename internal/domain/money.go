package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a monetary amount in cents. All cart arithmetic is integer
// arithmetic; decimal strings only appear at the API boundary.
type Money int64

// ParseMoney converts a decimal string such as "10.50" into cents.
// At most two fraction digits are accepted; the remote API never emits more.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse money: empty value")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}

	var cents int64
	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("parse money %q: more than two fraction digits", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse money %q: %w", s, err)
		}
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// String formats the amount as a two-decimal string, e.g. 1050 -> "10.50".
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Mul multiplies the amount by an integer quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// MarshalJSON renders the amount as a decimal string, matching the wire
/// convention of the order backend ("total": "100.00").
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both a decimal string ("10.50") and a JSON number
// (10.5); the catalog API emits prices in either form depending on endpoint.
// Anything else is an error rather than a silent zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return fmt.Errorf("unmarshal money: null value")
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal money: %w", err)
		}
		v, err := ParseMoney(s)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("unmarshal money %s: %w", trimmed, err)
	}
	*m = Money(math.Round(f * 100))
	return nil
}
