// Package export serializes population records to tabular files.
//
// Both writers emit the same table: one row per record with columns
// country, year, population, growth_rate. The growth_rate cell is empty
// for records without an annotated rate (the first record of a series).
// Empty input is not an error and produces a header-only table.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"popstats/internal/domain/entity"
	"popstats/internal/observability/metrics"
)

// Header is the column order shared by all export formats.
var Header = []string{"country", "year", "population", "growth_rate"}

// row converts one record into its tabular representation.
func row(r entity.PopulationRecord) []string {
	growth := ""
	if r.GrowthRate != nil {
		growth = strconv.FormatFloat(*r.GrowthRate, 'f', -1, 64)
	}
	return []string{
		r.Country,
		strconv.Itoa(r.Year),
		strconv.FormatInt(r.Population, 10),
		growth,
	}
}

// WriteCSV writes records as CSV to w, header included.
func WriteCSV(w io.Writer, records []entity.PopulationRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	metrics.RecordExport("csv", len(records))
	return nil
}

// CSVFile writes records as a CSV file at path, creating or truncating it.
func CSVFile(path string, records []entity.PopulationRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}
