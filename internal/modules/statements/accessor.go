// Package statements resolves canonical financial concepts against
// provider-labeled statement tables.
package statements

import "github.com/aristath/beacon/internal/domain"

// Resolve looks up a canonical concept in a statement table at the given
// period rank (0 = most recent report). The concept's synonyms are tried
// in order and the first label present in the table wins; if that
// label's series is shorter than the requested period, resolution fails.
// Failures are reported as the unavailable metric, never as 0.
//
// No unit scaling happens here; converting percentages to fractions is
// the ratio deriver's concern.
func Resolve(table domain.StatementTable, concept Concept, period int) domain.Metric {
	if table == nil || period < 0 {
		return domain.Unavailable()
	}

	for _, label := range synonyms[concept] {
		values, ok := table[label]
		if !ok {
			continue
		}
		if period >= len(values) {
			return domain.Unavailable()
		}
		return domain.NewMetric(values[period])
	}

	return domain.Unavailable()
}

// Series returns the full most-recent-first series for a concept, from
// the first synonym present in the table. A nil result means no synonym
// matched. The returned slice is a copy of the table's data.
func Series(table domain.StatementTable, concept Concept) []float64 {
	if table == nil {
		return nil
	}

	for _, label := range synonyms[concept] {
		values, ok := table[label]
		if !ok {
			continue
		}
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	return nil
}
