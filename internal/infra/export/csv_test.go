package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"popstats/internal/domain/entity"
	"popstats/internal/infra/export"
)

func testRecords() []entity.PopulationRecord {
	rate := func(v float64) *float64 { return &v }
	return []entity.PopulationRecord{
		{Country: "USA", Year: 2000, Population: 100},
		{Country: "USA", Year: 2001, Population: 110, GrowthRate: rate(10)},
		{Country: "USA", Year: 2002, Population: 99, GrowthRate: rate(-10)},
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, testRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}

	want := [][]string{
		{"country", "year", "population", "growth_rate"},
		{"USA", "2000", "100", ""},
		{"USA", "2001", "110", "10"},
		{"USA", "2002", "99", "-10"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("csv rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSVEmptyInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want header only", len(lines))
	}
	if lines[0] != "country,year,population,growth_rate" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestWriteCSVLineCount(t *testing.T) {
	t.Parallel()

	records := testRecords()
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Count(buf.String(), "\n")
	if lines != len(records)+1 {
		t.Errorf("got %d lines, want %d (header + rows)", lines, len(records)+1)
	}
}

func TestCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "population_usa.csv")
	if err := export.CSVFile(path, testRecords()); err != nil {
		t.Fatalf("CSVFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.HasPrefix(string(data), "country,year,population,growth_rate\n") {
		t.Errorf("exported file missing header: %q", string(data[:min(len(data), 60)]))
	}
}
