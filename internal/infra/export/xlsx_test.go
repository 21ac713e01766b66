package export_test

import (
	"bytes"
	"testing"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"popstats/internal/domain/entity"
	"popstats/internal/infra/export"
)

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := export.WriteXLSX(&buf, testRecords(), nil)
	require.NoError(t, err)

	wb, err := xlsx.OpenReader(&buf)
	require.NoError(t, err)

	rows, err := wb.GetRows("Population")
	require.NoError(t, err)

	want := [][]string{
		{"country", "year", "population", "growth_rate"},
		{"USA", "2000", "100"},
		{"USA", "2001", "110", "10"},
		{"USA", "2002", "99", "-10"},
	}
	// GetRows trims trailing empty cells, so the unset growth_rate row is
	// three cells wide.
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("xlsx rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteXLSXWithAnalysis(t *testing.T) {
	t.Parallel()

	summary := &entity.PopulationAnalysis{
		Country:           "USA",
		StartYear:         2000,
		EndYear:           2002,
		AverageGrowthRate: 0,
		MaxPopulation:     110,
		MinPopulation:     99,
		TotalChange:       11,
		PercentageChange:  11.1111,
	}

	var buf bytes.Buffer
	err := export.WriteXLSX(&buf, testRecords(), summary)
	require.NoError(t, err)

	wb, err := xlsx.OpenReader(&buf)
	require.NoError(t, err)

	country, err := wb.GetCellValue("Analysis", "B1")
	require.NoError(t, err)
	require.Equal(t, "USA", country)

	totalChange, err := wb.GetCellValue("Analysis", "B7")
	require.NoError(t, err)
	require.Equal(t, "11", totalChange)
}

func TestWriteXLSXEmptyInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := export.WriteXLSX(&buf, nil, nil)
	require.NoError(t, err)

	wb, err := xlsx.OpenReader(&buf)
	require.NoError(t, err)

	rows, err := wb.GetRows("Population")
	require.NoError(t, err)
	require.Len(t, rows, 1, "empty export must still carry the header row")
}
