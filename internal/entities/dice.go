package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// DiceExpr is a parsed dice expression such as "2d6+3". A zero Count with a
// nonzero Flat represents a flat value.
type DiceExpr struct {
	Count int
	Sides int
	Flat  int
}

// IsZero reports whether the expression rolls nothing and adds nothing.
func (d DiceExpr) IsZero() bool {
	return d.Count == 0 && d.Flat == 0
}

// String renders the expression back to "#d#" or "#d#+#" form.
func (d DiceExpr) String() string {
	if d.Count == 0 {
		return strconv.Itoa(d.Flat)
	}
	if d.Flat == 0 {
		return fmt.Sprintf("%dd%d", d.Count, d.Sides)
	}
	if d.Flat < 0 {
		return fmt.Sprintf("%dd%d%d", d.Count, d.Sides, d.Flat)
	}
	return fmt.Sprintf("%dd%d+%d", d.Count, d.Sides, d.Flat)
}

// ParseDiceExpr parses "#d#", "#d#+#", "#d#-#", or a bare integer.
func ParseDiceExpr(s string) (DiceExpr, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DiceExpr{}, fmt.Errorf("empty dice expression")
	}

	dIdx := strings.IndexByte(s, 'd')
	if dIdx < 0 {
		flat, err := strconv.Atoi(s)
		if err != nil {
			return DiceExpr{}, fmt.Errorf("invalid dice expression %q", s)
		}
		return DiceExpr{Flat: flat}, nil
	}

	count, err := strconv.Atoi(s[:dIdx])
	if err != nil || count < 1 {
		return DiceExpr{}, fmt.Errorf("invalid dice count in %q", s)
	}

	rest := s[dIdx+1:]
	flat := 0
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		flat, err = strconv.Atoi(rest[i:])
		if err != nil {
			return DiceExpr{}, fmt.Errorf("invalid modifier in %q", s)
		}
		rest = rest[:i]
	}

	sides, err := strconv.Atoi(rest)
	if err != nil || sides < 2 {
		return DiceExpr{}, fmt.Errorf("invalid die size in %q", s)
	}

	return DiceExpr{Count: count, Sides: sides, Flat: flat}, nil
}
