package metrics

import (
	"time"
)

// Outcome labels for World Bank API requests.
const (
	OutcomeSuccess     = "success"
	OutcomeNoData      = "no_data"
	OutcomeError       = "error"
	OutcomeCircuitOpen = "circuit_open"
)

// RecordWorldBankRequest records one outbound World Bank API request.
// The outcome should be one of the Outcome* constants.
func RecordWorldBankRequest(outcome string, duration time.Duration) {
	WorldBankRequestsTotal.WithLabelValues(outcome).Inc()
	WorldBankRequestDuration.Observe(duration.Seconds())
}

// RecordRateLimitWait records the time a request spent suspended on the
// fixed-window admission gate.
func RecordRateLimitWait(duration time.Duration) {
	RateLimitWaitDuration.Observe(duration.Seconds())
}

// RecordRangeFetch records metrics for a completed year-range fetch.
func RecordRangeFetch(country string, duration time.Duration, fetched, missing int) {
	RangeFetchDuration.WithLabelValues(country).Observe(duration.Seconds())
	if fetched > 0 {
		RecordsFetchedTotal.WithLabelValues(country).Add(float64(fetched))
	}
	if missing > 0 {
		RecordsMissingTotal.WithLabelValues(country).Add(float64(missing))
	}
}

// RecordAnalysis records the result of a trend analysis operation.
func RecordAnalysis(ok bool) {
	result := "ok"
	if !ok {
		result = "no_data"
	}
	AnalysesTotal.WithLabelValues(result).Inc()
}

// RecordExport records an export operation and its row count.
func RecordExport(format string, rows int) {
	ExportsTotal.WithLabelValues(format).Inc()
	ExportRows.Observe(float64(rows))
}
