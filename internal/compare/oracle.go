// Package compare implements the tolerant cell-equality oracle used to
// decide whether a ground-truth value and an extracted value represent the
// same clinical fact. Clinical extraction fields mix numeric measurements,
// binary findings encoded many ways ("Yes"/"1"/"Present"), coded categories
// and free text, so equality is decided by an ordered rule chain rather
// than a single comparison.
package compare

import (
	"math"
	"strconv"
	"strings"

	"github.com/imagendo/radeval/internal/config"
)

// MissingMarker is the canonical representation of an absent cell after
// normalization.
const MissingMarker = "<NA>"

// Oracle decides tolerant equality between two scalar cell values.
// It is a pure value type: safe for concurrent use.
type Oracle struct {
	naSet      map[string]bool
	vacuousSet map[string]bool
	trueSet    map[string]bool
	falseSet   map[string]bool
	relTol     float64
	absTol     float64
}

// DefaultConfig returns the oracle defaults used when no configuration is
// loaded (tests, library use).
func DefaultConfig() config.CompareConfig {
	return config.CompareConfig{
		NAStrings:     []string{"nan", "none", "na", "n/a", "nat", "unspecified", "not specified"},
		VacuousValues: []string{"unspecified", "not specified", "n/a", "na", "", "null"},
		TrueSynonyms:  []string{"yes", "present", "true", "active", "positive", "complete", "conventional"},
		FalseSynonyms: []string{"no", "absent", "false", "inactive", "negative", "normal"},
		// AbsTol absorbs sub-hundredth formatting noise ("7.001" vs "7.0");
		// measurements in this domain are whole or half millimetres.
		RelTol: 1e-5,
		AbsTol: 0.01,
	}
}

// NewOracle builds an Oracle from configuration.
func NewOracle(cfg config.CompareConfig) *Oracle {
	return &Oracle{
		naSet:      lowerSet(cfg.NAStrings),
		vacuousSet: lowerSet(cfg.VacuousValues),
		trueSet:    lowerSet(cfg.TrueSynonyms),
		falseSet:   lowerSet(cfg.FalseSynonyms),
		relTol:     cfg.RelTol,
		absTol:     cfg.AbsTol,
	}
}

func lowerSet(vals []string) map[string]bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		set[strings.ToLower(v)] = true
	}
	return set
}

// Normalize string-casts a raw cell: trims whitespace and collapses the
// configured NA representations (and empty cells) to MissingMarker.
func (o *Oracle) Normalize(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return MissingMarker
	}
	if o.naSet[strings.ToLower(trimmed)] {
		return MissingMarker
	}
	return trimmed
}

// Equal reports whether two cell values represent the same fact. It is a
// total function: any pair of strings is comparable and no rule can fail.
// Rules apply in strict order; the first applicable rule wins:
//
//  1. both missing → equal
//  2. one missing → equal iff the present value is vacuous or "0"
//  3. boolean synonym polarity (authoritative on mismatch)
//  4. numeric closeness within tolerance
//  5. case-insensitive trimmed string equality
//
// "0" is screened by rules 2 and 3 before any numeric reading: in this
// domain it is overloaded as "false", "missing" and the number zero.
func (o *Oracle) Equal(a, b string) bool {
	aMissing := a == MissingMarker
	bMissing := b == MissingMarker

	if aMissing && bMissing {
		return true
	}

	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if aMissing || bMissing {
		present := s1
		if aMissing {
			present = s2
		}
		return o.vacuousSet[present] || present == "0"
	}

	t1 := s1 == "1" || o.trueSet[s1]
	f1 := s1 == "0" || o.falseSet[s1]
	t2 := s2 == "1" || o.trueSet[s2]
	f2 := s2 == "0" || o.falseSet[s2]

	if (t1 && t2) || (f1 && f2) {
		return true
	}
	if (t1 && f2) || (f1 && t2) {
		return false
	}

	n1, err1 := strconv.ParseFloat(s1, 64)
	n2, err2 := strconv.ParseFloat(s2, 64)
	if err1 == nil && err2 == nil {
		return o.isClose(n1, n2)
	}

	return s1 == s2
}

// isClose mirrors the standard |a-b| <= absTol + relTol*|b| closeness test,
// applied symmetrically so Equal stays commutative.
func (o *Oracle) isClose(a, b float64) bool {
	diff := math.Abs(a - b)
	return diff <= o.absTol+o.relTol*math.Abs(b) ||
		diff <= o.absTol+o.relTol*math.Abs(a)
}
