// Package query filters, sorts and ranks normalized participants for display.
// Every function is a pure transform: inputs are never modified.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/normalize"
)

// Redeemed selects participants by access code redemption.
type Redeemed string

// Redemption filter values.
const (
	RedeemedAll Redeemed = "all"
	RedeemedYes Redeemed = "yes"
	RedeemedNo  Redeemed = "no"
)

// Operator is a relational comparison.
type Operator string

// Supported operators.
const (
	OpGTE Operator = ">="
	OpLTE Operator = "<="
	OpEQ  Operator = "="
	OpGT  Operator = ">"
	OpLT  Operator = "<"
)

// ParseOperator accepts the symbolic form or a word alias (gte, lte, eq, gt, lt).
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ">=", "gte":
		return OpGTE, nil
	case "<=", "lte":
		return OpLTE, nil
	case "=", "==", "eq":
		return OpEQ, nil
	case ">", "gt":
		return OpGT, nil
	case "<", "lt":
		return OpLT, nil
	default:
		return "", fmt.Errorf("unknown operator %q", s)
	}
}

// NumericFilter compares a derived value against Value. A nil Value is a no-op.
type NumericFilter struct {
	Operator Operator `json:"operator"`
	Value    *float64 `json:"value,omitempty"`
}

func (f *NumericFilter) match(v int) bool {
	if f == nil || f.Value == nil {
		return true
	}
	x, want := float64(v), *f.Value
	switch f.Operator {
	case OpGTE:
		return x >= want
	case OpLTE:
		return x <= want
	case OpEQ:
		return x == want
	case OpGT:
		return x > want
	case OpLT:
		return x < want
	default:
		return true
	}
}

// FilterSpec holds every predicate applied to the record set. All are ANDed.
type FilterSpec struct {
	Redeemed Redeemed       `json:"redeemed"`
	Progress *NumericFilter `json:"progress,omitempty"`
	Badges   *NumericFilter `json:"badges,omitempty"`
	// Text matches the name case-insensitively, and the email too when MatchEmail is set.
	// Empty matches everything.
	Text       string `json:"text,omitempty"`
	MatchEmail bool   `json:"match_email,omitempty"`
}

// Match reports whether p satisfies every predicate in the filter.
func (s FilterSpec) Match(p *domain.Participant) bool {
	switch s.Redeemed {
	case RedeemedYes:
		if !p.Redeemed() {
			return false
		}
	case RedeemedNo:
		if p.Redeemed() {
			return false
		}
	}
	if !s.Progress.match(p.Percentage()) {
		return false
	}
	if !s.Badges.match(p.Completed()) {
		return false
	}
	if strings.TrimSpace(s.Text) != "" {
		return normalize.ContainsFold(p.Name, s.Text) ||
			(s.MatchEmail && normalize.ContainsFold(p.Email, s.Text))
	}
	return true
}

// Filter returns the matching participants in input order.
func Filter(in []domain.Participant, spec FilterSpec) []domain.Participant {
	out := make([]domain.Participant, 0, len(in))
	for i := range in {
		if spec.Match(&in[i]) {
			out = append(out, in[i])
		}
	}
	return out
}

// FilterParams is the raw query-string form of a FilterSpec.
type FilterParams struct {
	Redeemed   string
	ProgressOp string
	Progress   string
	BadgesOp   string
	Badges     string
	Text       string
}

// ParseFilter validates raw params. Empty numeric values leave that predicate unset;
// an operator without a value defaults to >=.
func ParseFilter(p FilterParams) (FilterSpec, error) {
	spec := FilterSpec{Redeemed: RedeemedAll, Text: strings.TrimSpace(p.Text)}
	details := map[string]string{}

	switch r := Redeemed(strings.ToLower(strings.TrimSpace(p.Redeemed))); r {
	case "", RedeemedAll:
	case RedeemedYes, RedeemedNo:
		spec.Redeemed = r
	default:
		details["redeemed"] = "must be one of all, yes, no"
	}

	var err error
	if spec.Progress, err = parseNumeric(p.ProgressOp, p.Progress); err != nil {
		details["progress"] = err.Error()
	}
	if spec.Badges, err = parseNumeric(p.BadgesOp, p.Badges); err != nil {
		details["badges"] = err.Error()
	}

	if len(details) > 0 {
		return FilterSpec{}, domainerrors.ValidationWithDetails("invalid filter", details)
	}
	return spec, nil
}

func parseNumeric(op, value string) (*NumericFilter, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f := &NumericFilter{Operator: OpGTE}
	if strings.TrimSpace(op) != "" {
		parsed, err := ParseOperator(op)
		if err != nil {
			return nil, err
		}
		f.Operator = parsed
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("value %q is not a number", value)
	}
	f.Value = &v
	return f, nil
}
