// Package reconcile aligns a raw extracted record's key set to exactly
// match a field schema: missing fields are filled with schema defaults,
// misspelled keys are renamed to their closest schema key, and unrelated
// extra keys are dropped.
package reconcile

import (
	"sort"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/config"
	"github.com/imagendo/radeval/internal/model"
)

// borderlineMargin is the band above the threshold within which a rename is
// logged as borderline.
const borderlineMargin = 0.05

// Report enumerates every repair applied during reconciliation, so no
// rename, deletion or default-fill happens silently.
type Report struct {
	// Added lists schema keys inserted with their default value, in
	// canonical schema order.
	Added []string
	// Renamed maps each misspelled extra key to the schema key it was
	// moved to.
	Renamed map[string]string
	// Deleted lists extra keys dropped as unrelated, in sorted order.
	Deleted []string
}

// Changed reports whether any repair was applied.
func (r *Report) Changed() bool {
	return len(r.Added) > 0 || len(r.Renamed) > 0 || len(r.Deleted) > 0
}

// Reconciler repairs extracted records against a schema.
type Reconciler struct {
	threshold float64
}

// DefaultConfig returns the reconciliation defaults.
func DefaultConfig() config.ReconcileConfig {
	return config.ReconcileConfig{SimilarityThreshold: 0.8}
}

// New builds a Reconciler from configuration.
func New(cfg config.ReconcileConfig) *Reconciler {
	return &Reconciler{threshold: cfg.SimilarityThreshold}
}

// Reconcile produces a repaired record whose key set exactly equals the
// schema's key set, plus a report of every repair. Reconciliation never
// fails on well-formed input.
//
// Extra keys are processed in sorted order and matched against schema keys
// by normalized Levenshtein similarity; the best match wins, with ties
// broken by canonical schema order. When two extras claim the same schema
// key, the higher similarity wins and an equal-similarity tie keeps the
// lexicographically earlier extra; the loser is dropped. A rename takes
// precedence over the default value filled for a missing key.
func (rc *Reconciler) Reconcile(schema *model.Schema, rec model.Record) (model.Record, *Report) {
	out := rec.Clone()
	report := &Report{Renamed: map[string]string{}}

	// Missing schema keys get the template default.
	for _, f := range schema.Fields() {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Default
			report.Added = append(report.Added, f.Name)
		}
	}

	// Partition extra keys into renames and deletions.
	var extras []string
	for k := range rec {
		if !schema.Has(k) {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)

	type claim struct {
		extra string
		sim   float64
	}
	claimed := make(map[string]claim)

	for _, k := range extras {
		target, sim := rc.bestMatch(schema, k)
		if target == "" || sim < rc.threshold {
			continue
		}
		if prev, ok := claimed[target]; ok {
			if sim <= prev.sim {
				continue
			}
			delete(report.Renamed, prev.extra)
		}
		claimed[target] = claim{extra: k, sim: sim}
		report.Renamed[k] = target

		if sim < rc.threshold+borderlineMargin {
			zap.L().Warn("reconcile: borderline key rename",
				zap.String("from", k),
				zap.String("to", target),
				zap.Float64("similarity", sim),
			)
		}
	}

	// Apply renames and deletions. Rename moves the extracted value onto
	// the schema key, overwriting any default inserted above.
	for _, k := range extras {
		if target, ok := report.Renamed[k]; ok {
			out[target] = rec[k]
			delete(out, k)
			continue
		}
		delete(out, k)
		report.Deleted = append(report.Deleted, k)
	}

	return out, report
}

// bestMatch returns the schema key most similar to the extra key. Schema
// keys are scanned in canonical order, so a similarity tie resolves to the
// earlier template field. An exact match cannot occur here: exact names are
// never classified as extra.
func (rc *Reconciler) bestMatch(schema *model.Schema, key string) (string, float64) {
	best := ""
	bestSim := 0.0
	for _, f := range schema.Fields() {
		sim := levenshtein.Similarity(key, f.Name, nil)
		if sim > bestSim {
			best = f.Name
			bestSim = sim
		}
	}
	return best, bestSim
}
