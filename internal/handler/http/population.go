package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"popstats/internal/domain/entity"
	"popstats/internal/handler/http/respond"
	"popstats/internal/infra/export"
	"popstats/internal/usecase/analysis"
)

// PopulationService is the use case surface the handlers depend on.
type PopulationService interface {
	FetchGrowthSeries(ctx context.Context, countryCode string, startYear, endYear int) ([]entity.PopulationRecord, error)
	Analyze(records []entity.PopulationRecord) (entity.PopulationAnalysis, error)
}

// PopulationHandler serves population queries and exports.
type PopulationHandler struct {
	svc PopulationService
}

// NewPopulationHandler creates a PopulationHandler backed by the given service.
func NewPopulationHandler(svc PopulationService) *PopulationHandler {
	return &PopulationHandler{svc: svc}
}

// populationQuery holds the parsed query parameters shared by the query
// and export endpoints.
type populationQuery struct {
	Country   string
	StartYear int
	EndYear   int
	MinGrowth *float64
	MaxGrowth *float64
}

// parseQuery extracts and validates the common query parameters.
func parseQuery(r *http.Request) (populationQuery, error) {
	q := r.URL.Query()

	country := q.Get("country")
	if country == "" {
		return populationQuery{}, &entity.ValidationError{Field: "country", Message: "is required"}
	}

	startYear, err := parseIntParam(q.Get("start_year"), "start_year")
	if err != nil {
		return populationQuery{}, err
	}
	endYear, err := parseIntParam(q.Get("end_year"), "end_year")
	if err != nil {
		return populationQuery{}, err
	}

	minGrowth, err := parseFloatParam(q.Get("min_growth"), "min_growth")
	if err != nil {
		return populationQuery{}, err
	}
	maxGrowth, err := parseFloatParam(q.Get("max_growth"), "max_growth")
	if err != nil {
		return populationQuery{}, err
	}

	return populationQuery{
		Country:   country,
		StartYear: startYear,
		EndYear:   endYear,
		MinGrowth: minGrowth,
		MaxGrowth: maxGrowth,
	}, nil
}

func parseIntParam(value, field string) (int, error) {
	if value == "" {
		return 0, &entity.ValidationError{Field: field, Message: "is required"}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &entity.ValidationError{Field: field, Message: "must be an integer"}
	}
	return n, nil
}

func parseFloatParam(value, field string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, &entity.ValidationError{Field: field, Message: "must be a number"}
	}
	return &f, nil
}

// populationResponse is the JSON body returned by the query endpoint.
type populationResponse struct {
	Country  string                     `json:"country"`
	Records  []entity.PopulationRecord  `json:"records"`
	Analysis *entity.PopulationAnalysis `json:"analysis,omitempty"`
}

// Query handles GET /api/population. It fetches the growth-annotated
// series for the requested range, optionally filters it by growth rate
// bounds, and attaches a trend summary. The summary is computed over the
// whole series; the growth bounds only narrow the returned records.
func (h *PopulationHandler) Query(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	series, err := h.svc.FetchGrowthSeries(r.Context(), query.Country, query.StartYear, query.EndYear)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	resp := populationResponse{
		Country: query.Country,
		Records: analysis.FilterByGrowthRate(series, query.MinGrowth, query.MaxGrowth),
	}

	summary, err := h.svc.Analyze(series)
	switch {
	case err == nil:
		resp.Analysis = &summary
	case errors.Is(err, entity.ErrNoData):
		// Every requested year was missing. The query itself is fine, so
		// return the empty series without a summary.
	default:
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, resp)
}

// Export handles GET /api/population/export. It streams the series as a
// CSV or XLSX attachment; the format query parameter selects which.
func (h *PopulationHandler) Export(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		respond.DomainError(w, &entity.ValidationError{
			Field:   "format",
			Message: "must be csv or xlsx",
		})
		return
	}

	series, err := h.svc.FetchGrowthSeries(r.Context(), query.Country, query.StartYear, query.EndYear)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	records := analysis.FilterByGrowthRate(series, query.MinGrowth, query.MaxGrowth)

	filename := fmt.Sprintf("population_%s_%d_%d.%s",
		query.Country, query.StartYear, query.EndYear, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteCSV(w, records)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		var summary *entity.PopulationAnalysis
		if s, analyzeErr := h.svc.Analyze(series); analyzeErr == nil {
			summary = &s
		}
		err = export.WriteXLSX(w, records, summary)
	}
	if err != nil {
		// The attachment body may already be partially written, so the
		// error response is best effort.
		respond.DomainError(w, err)
	}
}
