// Package rest exposes the catalog search HTTP API.
package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog-search/domain"
	"catalog-search/logger"
	"catalog-search/usecase"
	appOtel "catalog-search/utils/otel"

	"github.com/labstack/echo/v4"
)

// Handler contains all HTTP handlers for the catalog search service.
type Handler struct {
	saveUsecase    *usecase.SaveRecordUsecase
	deleteUsecase  *usecase.DeleteRecordUsecase
	searchUsecase  *usecase.SearchRecordsUsecase
	suggestUsecase *usecase.SuggestTermsUsecase
	reindexUsecase *usecase.ReindexMirrorUsecase
}

func NewHandler(
	save *usecase.SaveRecordUsecase,
	del *usecase.DeleteRecordUsecase,
	search *usecase.SearchRecordsUsecase,
	suggest *usecase.SuggestTermsUsecase,
	reindex *usecase.ReindexMirrorUsecase,
) *Handler {
	return &Handler{
		saveUsecase:    save,
		deleteUsecase:  del,
		searchUsecase:  search,
		suggestUsecase: suggest,
		reindexUsecase: reindex,
	}
}

// RegisterRoutes wires all handlers under /v1.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	v1 := e.Group("/v1")
	v1.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	v1.GET("/search", h.handleSearch)
	v1.GET("/suggest", h.handleSuggest)
	v1.POST("/records", h.handleSaveRecord)
	v1.DELETE("/records/:id", h.handleDeleteRecord)
	v1.POST("/reindex", h.handleReindex)
}

// handleSearch answers GET /v1/search. Equality filters arrive as
// filter.<field>=<value> query parameters.
func (h *Handler) handleSearch(c echo.Context) error {
	start := time.Now()
	builder := domain.NewQueryBuilder().
		WithText(c.QueryParam("q"))

	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
		}
		builder.WithLimit(limit)
	}
	if v := c.QueryParam("source"); v != "" {
		builder.WithSource(domain.Source(v))
	}
	if v := c.QueryParam("highlight"); v == "true" || v == "1" {
		builder.WithHighlight(true)
	}
	for field, values := range c.QueryParams() {
		name, ok := strings.CutPrefix(field, "filter.")
		if !ok || len(values) == 0 {
			continue
		}
		builder.WithFilter(name, values[0])
	}

	query, err := builder.Build()
	if err != nil {
		return writeError(c, err, "search")
	}

	result, err := h.searchUsecase.Execute(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err, "search")
	}

	if m := appOtel.Metrics; m != nil {
		m.SearchDuration.Record(c.Request().Context(), time.Since(start).Seconds())
	}
	logger.Logger.Info("search ok",
		"query", query.Text,
		"source", string(result.Source),
		"count", result.Total,
	)
	return c.JSON(http.StatusOK, result)
}

type suggestResponse struct {
	Term        string              `json:"term"`
	Source      domain.Source       `json:"source"`
	Suggestions []domain.Suggestion `json:"suggestions"`
}

func (h *Handler) handleSuggest(c echo.Context) error {
	term := c.QueryParam("term")
	source := domain.SourcePrimary
	if v := c.QueryParam("source"); v != "" {
		source = domain.Source(v)
	}
	if source != domain.SourcePrimary && source != domain.SourceMirror {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown suggestion source"})
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
		}
		limit = n
	}

	suggestions, err := h.suggestUsecase.Execute(c.Request().Context(), term, limit, source)
	if err != nil {
		return writeError(c, err, "suggest")
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	return c.JSON(http.StatusOK, suggestResponse{Term: term, Source: source, Suggestions: suggestions})
}

type saveRecordRequest struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
	Attrs  map[string]string `json:"attrs"`
}

func (h *Handler) handleSaveRecord(c echo.Context) error {
	var req saveRecordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	record, err := domain.NewRecord(req.ID, req.Fields, req.Attrs)
	if err != nil {
		return writeError(c, err, "save_record")
	}

	if err := h.saveUsecase.Execute(c.Request().Context(), record); err != nil {
		return writeError(c, err, "save_record")
	}
	if m := appOtel.Metrics; m != nil {
		m.IndexedTotal.Add(c.Request().Context(), 1)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": record.ID(), "status": "indexed"})
}

func (h *Handler) handleDeleteRecord(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "record id must not be empty"})
	}

	if err := h.deleteUsecase.Execute(c.Request().Context(), id); err != nil {
		return writeError(c, err, "delete_record")
	}
	if m := appOtel.Metrics; m != nil {
		m.DeletedTotal.Add(c.Request().Context(), 1)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (h *Handler) handleReindex(c echo.Context) error {
	result, err := h.reindexUsecase.Execute(c.Request().Context())
	if err != nil {
		return writeError(c, err, "reindex")
	}
	if m := appOtel.Metrics; m != nil {
		m.ReindexDuration.Record(c.Request().Context(), result.Duration.Seconds())
	}
	return c.JSON(http.StatusOK, result)
}

// writeError maps domain errors onto HTTP statuses: caller mistakes are
// 400, mirror outages 503, everything else 500.
func writeError(c echo.Context, err error, operation string) error {
	if m := appOtel.Metrics; m != nil {
		m.ErrorsTotal.Add(c.Request().Context(), 1)
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	}

	var unavailableErr *domain.IndexUnavailableError
	if errors.As(err, &unavailableErr) {
		logger.Logger.Error("mirror unavailable", "operation", operation, "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "mirror index unavailable"})
	}

	logger.Logger.Error("request failed", "operation", operation, "err", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
