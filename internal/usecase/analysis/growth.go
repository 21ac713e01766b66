// Package analysis provides pure functions over population record lists:
// growth-rate annotation, trend analysis, and growth-rate filtering.
//
// Functions in this package perform no I/O and never suspend; callers are
// responsible for fetching and, where required, ordering the input.
package analysis

import (
	"sort"

	"popstats/internal/domain/entity"
)

// SortByYear sorts records ascending by year, in place.
//
// Range fetches yield records in completion order, so any consumer that
// needs chronology (AnnotateGrowthRates in particular) must sort first.
func SortByYear(records []entity.PopulationRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Year < records[j].Year
	})
}

// AnnotateGrowthRates assigns each record its year-over-year percentage
// growth relative to the previous record, in a single left-to-right pass.
//
// The input must already be sorted ascending by year and contain only
// valid records. The first record never receives a growth rate, and a
// record is skipped when the previous population is zero.
func AnnotateGrowthRates(records []entity.PopulationRecord) {
	for i := 1; i < len(records); i++ {
		prev := records[i-1].Population
		if prev <= 0 {
			continue
		}
		rate := float64(records[i].Population-prev) / float64(prev) * 100
		records[i].GrowthRate = &rate
	}
}
