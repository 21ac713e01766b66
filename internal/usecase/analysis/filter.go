package analysis

import (
	"popstats/internal/domain/entity"
)

// FilterByGrowthRate returns the records whose growth rate satisfies every
// specified bound. A nil bound is unbounded.
//
// Policy for records without a growth rate: they are EXCLUDED whenever at
// least one bound is specified, since they cannot be compared against it.
// With no bounds at all, every record passes.
func FilterByGrowthRate(records []entity.PopulationRecord, minGrowth, maxGrowth *float64) []entity.PopulationRecord {
	filtered := make([]entity.PopulationRecord, 0, len(records))
	bounded := minGrowth != nil || maxGrowth != nil

	for _, r := range records {
		if r.GrowthRate == nil {
			if bounded {
				continue
			}
			filtered = append(filtered, r)
			continue
		}
		if minGrowth != nil && *r.GrowthRate < *minGrowth {
			continue
		}
		if maxGrowth != nil && *r.GrowthRate > *maxGrowth {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}
