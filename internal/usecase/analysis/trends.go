package analysis

import (
	"popstats/internal/domain/entity"
)

// validOnly returns the records that carry a real observation.
func validOnly(records []entity.PopulationRecord) []entity.PopulationRecord {
	valid := make([]entity.PopulationRecord, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// Analyze reduces a list of population records into summary trend
// statistics. Invalid (zero-population) records are discarded first; if
// nothing remains, entity.ErrNoData is returned so an entirely
// unproductive query is never silently swallowed.
//
// The input needs no particular ordering. The average growth rate is the
// arithmetic mean of the growth rates that are set, and 0 when none are.
func Analyze(records []entity.PopulationRecord) (entity.PopulationAnalysis, error) {
	valid := validOnly(records)
	if len(valid) == 0 {
		return entity.PopulationAnalysis{}, entity.ErrNoData
	}

	first := valid[0]
	result := entity.PopulationAnalysis{
		Country:       first.Country,
		StartYear:     first.Year,
		EndYear:       first.Year,
		MaxPopulation: first.Population,
		MinPopulation: first.Population,
	}

	var growthSum float64
	var growthCount int

	for _, r := range valid {
		if r.Year < result.StartYear {
			result.StartYear = r.Year
		}
		if r.Year > result.EndYear {
			result.EndYear = r.Year
		}
		if r.Population > result.MaxPopulation {
			result.MaxPopulation = r.Population
		}
		if r.Population < result.MinPopulation {
			result.MinPopulation = r.Population
		}
		if r.GrowthRate != nil {
			growthSum += *r.GrowthRate
			growthCount++
		}
	}

	if growthCount > 0 {
		result.AverageGrowthRate = growthSum / float64(growthCount)
	}

	result.TotalChange = result.MaxPopulation - result.MinPopulation
	if result.MinPopulation > 0 {
		result.PercentageChange = float64(result.TotalChange) / float64(result.MinPopulation) * 100
	}

	return result, nil
}
