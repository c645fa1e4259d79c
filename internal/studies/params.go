package studies

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	xutil "FinStudies/pkg/util"
)

// PeriodArg is the period argument of a study: unset, a single value or a list.
// The zero value is unset.
type PeriodArg struct {
	values []int
	set    bool
}

// Single returns a PeriodArg holding one period.
func Single(v int) PeriodArg { return PeriodArg{values: []int{v}, set: true} }

// Many returns a PeriodArg holding the given periods in order.
// Many() with no values is a set, empty list.
func Many(vs ...int) PeriodArg {
	cp := make([]int, len(vs))
	copy(cp, vs)
	return PeriodArg{values: cp, set: true}
}

// IsSet reports whether a value was supplied.
func (p PeriodArg) IsSet() bool { return p.set }

// Normalize returns the canonical list form. Unset yields defaults; an empty
// list stays empty.
func (p PeriodArg) Normalize(defaults []int) []int {
	src := p.values
	if !p.set {
		src = defaults
	}
	out := make([]int, len(src))
	copy(out, src)
	return out
}

// ParsePeriods parses the query form: "" (unset), "30" or "10,30".
func ParsePeriods(s string) (PeriodArg, error) {
	if s == "" {
		return PeriodArg{}, nil
	}
	vs, err := xutil.ParseIntList(s)
	if err != nil {
		return PeriodArg{}, fmt.Errorf("periods: %w", err)
	}
	if len(vs) == 1 {
		return Single(vs[0]), nil
	}
	return Many(vs...), nil
}

// UnmarshalJSON accepts null, a number or an array of numbers.
func (p *PeriodArg) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = PeriodArg{}
		return nil
	}
	if b[0] == '[' {
		var vs []int
		if err := json.Unmarshal(b, &vs); err != nil {
			return fmt.Errorf("periods: %w", err)
		}
		*p = Many(vs...)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("periods: %w", err)
	}
	*p = Single(v)
	return nil
}

// MarshalJSON encodes unset as null and set values as an array.
func (p PeriodArg) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.Normalize(nil))
}

// Params holds scalar study parameters. They are never broadcast over periods.
type Params map[string]float64

// Float returns the named parameter, or 0 when absent.
func (p Params) Float(name string) float64 { return p[name] }

// Int returns the named parameter truncated to an int.
func (p Params) Int(name string) int { return int(math.Trunc(p[name])) }

// merge returns a copy of p with over applied on top.
func (p Params) merge(over Params) Params {
	out := make(Params, len(p)+len(over))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
