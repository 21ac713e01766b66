package population_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"popstats/internal/domain/entity"
	"popstats/internal/usecase/population"
)

// stubFetcher serves populations from a fixed year table. Years absent
// from the table yield sentinel records, mirroring the real client. An
// optional random delay shuffles completion order.
type stubFetcher struct {
	mu          sync.Mutex
	populations map[int]int64
	maxDelay    time.Duration
	calls       map[int]int
}

func newStubFetcher(populations map[int]int64, maxDelay time.Duration) *stubFetcher {
	return &stubFetcher{
		populations: populations,
		maxDelay:    maxDelay,
		calls:       make(map[int]int),
	}
}

func (f *stubFetcher) Population(ctx context.Context, countryCode string, year int) entity.PopulationRecord {
	f.mu.Lock()
	f.calls[year]++
	f.mu.Unlock()

	if f.maxDelay > 0 {
		select {
		case <-time.After(time.Duration(rand.Int63n(int64(f.maxDelay)))):
		case <-ctx.Done():
			return entity.Sentinel(countryCode, year)
		}
	}

	pop, ok := f.populations[year]
	if !ok {
		return entity.Sentinel(countryCode, year)
	}
	return entity.PopulationRecord{Country: countryCode, Year: year, Population: pop}
}

func TestFetchRangeInclusiveBounds(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[int]int64{
		2000: 100, 2001: 110, 2002: 99,
	}, 0)
	svc := population.NewService(fetcher, nil)

	records, err := svc.FetchRange(context.Background(), "USA", 2000, 2002)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for year := 2000; year <= 2002; year++ {
		if fetcher.calls[year] != 1 {
			t.Errorf("year %d fetched %d times, want exactly once", year, fetcher.calls[year])
		}
	}
}

func TestFetchRangeFiltersSentinels(t *testing.T) {
	t.Parallel()

	// 2001 has no observation; 2003 reports zero.
	fetcher := newStubFetcher(map[int]int64{
		2000: 100, 2002: 110, 2003: 0,
	}, 0)
	svc := population.NewService(fetcher, nil)

	records, err := svc.FetchRange(context.Background(), "USA", 2000, 2003)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (sentinels filtered)", len(records))
	}
	for _, r := range records {
		if !r.Valid() {
			t.Errorf("invalid record leaked into range output: %+v", r)
		}
	}
}

func TestFetchRangeSingleYear(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[int]int64{2020: 500}, 0)
	svc := population.NewService(fetcher, nil)

	records, err := svc.FetchRange(context.Background(), "JPN", 2020, 2020)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(records) != 1 || records[0].Year != 2020 {
		t.Fatalf("got %+v, want single record for 2020", records)
	}
}

func TestFetchRangeValidation(t *testing.T) {
	t.Parallel()

	svc := population.NewService(newStubFetcher(nil, 0), nil)

	tests := []struct {
		name      string
		country   string
		startYear int
		endYear   int
	}{
		{name: "empty country", country: "", startYear: 2000, endYear: 2001},
		{name: "numeric country", country: "12", startYear: 2000, endYear: 2001},
		{name: "inverted range", country: "USA", startYear: 2005, endYear: 2000},
		{name: "zero start year", country: "USA", startYear: 0, endYear: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.FetchRange(context.Background(), tt.country, tt.startYear, tt.endYear)
			var vErr *entity.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("FetchRange error = %v, want *entity.ValidationError", err)
			}
		})
	}
}

func TestFetchRangeContextCancellation(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[int]int64{2000: 100}, 50*time.Millisecond)
	svc := population.NewService(fetcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.FetchRange(ctx, "USA", 2000, 2010)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchRange error = %v, want context.Canceled", err)
	}
}

func TestFetchGrowthSeries(t *testing.T) {
	t.Parallel()

	// Random completion order via delays; the series must still come out
	// chronological with correct growth annotations.
	fetcher := newStubFetcher(map[int]int64{
		2000: 100, 2001: 110, 2002: 99,
	}, 20*time.Millisecond)
	svc := population.NewService(fetcher, nil)

	series, err := svc.FetchGrowthSeries(context.Background(), "USA", 2000, 2002)
	if err != nil {
		t.Fatalf("FetchGrowthSeries: %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("got %d records, want 3", len(series))
	}
	for i, wantYear := range []int{2000, 2001, 2002} {
		if series[i].Year != wantYear {
			t.Errorf("series[%d].Year = %d, want %d", i, series[i].Year, wantYear)
		}
	}

	if series[0].GrowthRate != nil {
		t.Errorf("first record growth rate = %v, want unset", *series[0].GrowthRate)
	}
	for i, want := range []float64{10.0, -10.0} {
		got := series[i+1].GrowthRate
		if got == nil || math.Abs(*got-want) > 1e-9 {
			t.Errorf("series[%d].GrowthRate = %v, want %v", i+1, got, want)
		}
	}
}

func TestServiceAnalyze(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(map[int]int64{
		2000: 100, 2001: 110, 2002: 99,
	}, 0)
	svc := population.NewService(fetcher, nil)

	series, err := svc.FetchGrowthSeries(context.Background(), "USA", 2000, 2002)
	if err != nil {
		t.Fatalf("FetchGrowthSeries: %v", err)
	}

	summary, err := svc.Analyze(series)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if summary.MaxPopulation != 110 || summary.MinPopulation != 99 {
		t.Errorf("population extremes = [%d, %d], want [99, 110]",
			summary.MinPopulation, summary.MaxPopulation)
	}

	_, err = svc.Analyze(nil)
	if !errors.Is(err, entity.ErrNoData) {
		t.Errorf("Analyze(nil) error = %v, want entity.ErrNoData", err)
	}
}
