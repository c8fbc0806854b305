package lexer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NumberValue is the decoded value of a NUMBER token.
type NumberValue struct {
	IsInt bool
	Int   int64
	Float float64
}

// String formats the value without loss.
func (v NumberValue) String() string {
	if v.IsInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return strconv.FormatFloat(v.Float, 'g', -1, 64)
}

// NumberValue decodes a NUMBER token. Lexemes that fit a signed 64-bit
// integer decode as integers; everything else decodes as a float.
func (t Token) NumberValue() (NumberValue, error) {
	if t.Kind != NUMBER {
		return NumberValue{}, fmt.Errorf("token %s is not a number", t.Kind)
	}

	lit := t.Literal()
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return NumberValue{IsInt: true, Int: i, Float: float64(i)}, nil
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return NumberValue{}, fmt.Errorf("invalid number literal %q: %w", lit, err)
	}
	return NumberValue{Float: f}, nil
}

// TimeValue is the decoded value of a TIME token.
type TimeValue struct {
	Days         int
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
}

// Duration converts the value to a time.Duration. It fails when the
// total does not fit, about 292 years.
func (v TimeValue) Duration() (time.Duration, error) {
	parts := [...]struct {
		n    int
		unit time.Duration
	}{
		{v.Days, 24 * time.Hour},
		{v.Hours, time.Hour},
		{v.Minutes, time.Minute},
		{v.Seconds, time.Second},
		{v.Milliseconds, time.Millisecond},
	}

	var total time.Duration
	for _, p := range parts {
		if p.n < 0 {
			return 0, fmt.Errorf("time value %s has a negative field", v)
		}
		if time.Duration(p.n) > (math.MaxInt64-total)/p.unit {
			return 0, fmt.Errorf("time value %s overflows a duration", v)
		}
		total += time.Duration(p.n) * p.unit
	}
	return total, nil
}

// String formats the value as a canonical lower-case time literal.
func (v TimeValue) String() string {
	var sb strings.Builder
	sb.WriteString("T#")
	parts := []struct {
		n    int
		unit string
	}{
		{v.Days, "d"},
		{v.Hours, "h"},
		{v.Minutes, "m"},
		{v.Seconds, "s"},
		{v.Milliseconds, "ms"},
	}
	written := false
	for _, p := range parts {
		if p.n == 0 {
			continue
		}
		sb.WriteString(strconv.Itoa(p.n))
		sb.WriteString(p.unit)
		written = true
	}
	if !written {
		sb.WriteString("0s")
	}
	return sb.String()
}

// TimeValue decodes a TIME token.
func (t Token) TimeValue() (TimeValue, error) {
	if t.Kind != TIME {
		return TimeValue{}, fmt.Errorf("token %s is not a time literal", t.Kind)
	}

	b := t.Lexeme.Bytes()
	if len(b) < 2 {
		return TimeValue{}, fmt.Errorf("invalid time literal %q", t.Literal())
	}

	var v TimeValue
	fields := [...]*int{&v.Days, &v.Hours, &v.Minutes, &v.Seconds, &v.Milliseconds}

	i, next := 2, 0
	for i < len(b) {
		d := digitRun(b[i:])
		unit, n := timeUnit(b[i+d:], next)
		if d == 0 || n == 0 {
			return TimeValue{}, fmt.Errorf("invalid time literal %q", t.Literal())
		}
		value, err := strconv.Atoi(string(b[i : i+d]))
		if err != nil {
			return TimeValue{}, fmt.Errorf("invalid time literal %q: %w", t.Literal(), err)
		}
		*fields[unit] = value
		i += d + n
		next = unit + 1
	}
	return v, nil
}
