package chart

import (
	"strings"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Kind is a supported chart type.
type Kind string

const (
	KindLine       Kind = "line"
	KindSpline     Kind = "spline"
	KindColumn     Kind = "column"
	KindBar        Kind = "bar"
	KindArea       Kind = "area"
	KindAreaSpline Kind = "areaspline"
	KindScatter    Kind = "scatter"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{
	KindLine,
	KindSpline,
	KindColumn,
	KindBar,
	KindArea,
	KindAreaSpline,
	KindScatter,
}

// Title returns the kind with its first letter capitalized ("Areaspline").
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// IsValid reports whether k is one of Kinds.
func (k Kind) IsValid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

func (k Kind) smooth() bool { return k == KindSpline || k == KindAreaSpline }
func (k Kind) filled() bool { return k == KindArea || k == KindAreaSpline }
func (k Kind) bars() bool   { return k == KindColumn || k == KindBar }

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", errors.New(errors.ErrCodeInvalidKind, "unknown chart kind %q (valid: %s)", s, KindNames())
	}
	return k, nil
}

// ParseKinds parses a list of kind names. Empty entries are skipped and
// duplicates collapse. An empty result means every kind.
func ParseKinds(names []string) ([]Kind, error) {
	var out []Kind
	seen := make(map[Kind]bool)
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return append([]Kind(nil), Kinds...), nil
	}
	return out, nil
}

// KindNames returns the comma-separated list of kind names.
func KindNames() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
