package server

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mfenderov/sitegen/internal/pipeline"
	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/pkg/models"
)

type generateResponse struct {
	RunID          string                   `json:"run_id"`
	Message        string                   `json:"message"`
	Sites          []models.SiteSummary     `json:"sites"`
	Similarity     *models.SimilarityMatrix `json:"similarity,omitempty"`
	NearDuplicates []models.DuplicatePair   `json:"near_duplicates,omitempty"`
	Errors         []string                 `json:"errors,omitempty"`
}

type logsResponse struct {
	Sites   []models.SiteSummary  `json:"sites"`
	Batches []pipeline.BatchEntry `json:"batches"`
}

func (s *Server) handlePing(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Site generator is running",
	})
}

func (s *Server) handleGenerate(c echo.Context) error {
	req := models.DefaultRequest()
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	run, err := s.generator.Run(c.Request().Context(), req)
	if err != nil && run == nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
		}
		slog.Error("generation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "generation failed"})
	}

	resp := generateResponse{
		RunID:          run.ID,
		Sites:          make([]models.SiteSummary, 0, len(run.Documents)),
		Similarity:     run.Similarity,
		NearDuplicates: run.NearDuplicates,
		Errors:         run.Errors,
	}
	for _, d := range run.Documents {
		resp.Sites = append(resp.Sites, models.Summarize(d))
	}
	resp.Message = "Generated " + pluralSites(len(resp.Sites))
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetSite(c echo.Context) error {
	id := c.Param("id")
	if !models.ValidSiteID(id) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid site id"})
	}
	page, err := s.store.GetSite(c.Request().Context(), id)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.HTML(http.StatusOK, page)
}

func (s *Server) handleGetImage(c echo.Context) error {
	name := c.Param("filename")
	if !storage.ValidImageName(name) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid image name"})
	}
	data, err := s.store.GetImage(c.Request().Context(), name)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// handleGetLogs lists generated documents newest first.
func (s *Server) handleGetLogs(c echo.Context) error {
	docs := s.history.Documents()
	slices.Reverse(docs)

	resp := logsResponse{
		Sites:   make([]models.SiteSummary, 0, len(docs)),
		Batches: s.history.Batches(),
	}
	for _, d := range docs {
		resp.Sites = append(resp.Sites, models.Summarize(d))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.history.Stats())
}

func (s *Server) storeError(c echo.Context, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	}
	slog.Error("failed to read artifact", "error", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to read artifact"})
}

func pluralSites(n int) string {
	if n == 1 {
		return "1 site"
	}
	return strconv.Itoa(n) + " sites"
}
