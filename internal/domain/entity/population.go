// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as PopulationRecord and
// PopulationAnalysis, along with their validation rules and domain-specific errors.
package entity

// PopulationRecord represents one (country, year) population observation.
// A record with Population == 0 is the "no data" sentinel produced by the
// fetch client for failed or empty responses; sentinel records must be
// filtered out before growth-rate annotation or trend analysis.
//
// GrowthRate is the year-over-year percentage change relative to the
// previous record in a year-ascending series. It is nil until assigned by
// the growth-rate calculator and is never set on the first record of a
// series. Once assigned, a record is not mutated further.
type PopulationRecord struct {
	Country    string   `json:"country"`
	Year       int      `json:"year"`
	Population int64    `json:"population"`
	GrowthRate *float64 `json:"growth_rate,omitempty"`
}

// Valid reports whether the record carries a real observation.
// Zero population means "missing/invalid data", never an actual count.
func (r PopulationRecord) Valid() bool {
	return r.Population > 0
}

// Sentinel returns the "no data" record for the given country and year.
// It is used by the fetch client in place of an error for network and
// parse failures.
func Sentinel(country string, year int) PopulationRecord {
	return PopulationRecord{Country: country, Year: year, Population: 0}
}

// PopulationAnalysis is a read-only trend summary derived from a list of
// valid population records. It is computed fresh on each analysis call and
// never persisted or incrementally updated.
type PopulationAnalysis struct {
	Country           string  `json:"country"`
	StartYear         int     `json:"start_year"`
	EndYear           int     `json:"end_year"`
	AverageGrowthRate float64 `json:"average_growth_rate"`
	MaxPopulation     int64   `json:"max_population"`
	MinPopulation     int64   `json:"min_population"`
	TotalChange       int64   `json:"total_change"`
	PercentageChange  float64 `json:"percentage_change"`
}
