package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/mediabot/internal/media"
	"github.com/memohai/mediabot/internal/metrics"
)

// MediaReader is the read side of the media store used by the query API.
type MediaReader interface {
	All() []media.Record
	Search(keyword string) []media.Record
}

// MediaHandler exposes the media index over HTTP.
type MediaHandler struct {
	store   MediaReader
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewMediaHandler creates a media handler.
func NewMediaHandler(log *slog.Logger, store MediaReader, rec *metrics.Recorder) *MediaHandler {
	return &MediaHandler{
		store:   store,
		metrics: rec,
		logger:  log.With(slog.String("handler", "media")),
	}
}

// Register mounts GET /media and GET /search.
func (h *MediaHandler) Register(e *echo.Echo) {
	e.GET("/media", h.List)
	e.GET("/search", h.Search)
}

// List godoc
// @Summary List all media records
// @Description Returns every stored record, oldest first, including records that cannot be delivered
// @Tags media
// @Produce json
// @Success 200 {array} media.Record
// @Router /media [get]
func (h *MediaHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.All())
}

// Search godoc
// @Summary Search media by caption
// @Description Case-insensitive substring match on the caption; an empty q matches everything
// @Tags media
// @Produce json
// @Param q query string true "Keyword"
// @Success 200 {array} media.Record
// @Failure 400 {object} ErrorResponse
// @Router /search [get]
func (h *MediaHandler) Search(c echo.Context) error {
	values := c.QueryParams()
	if _, ok := values["q"]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	keyword := values.Get("q")
	h.metrics.IncSearch("http")
	results := h.store.Search(keyword)
	h.logger.Debug("search", slog.String("q", keyword), slog.Int("matches", len(results)))
	return c.JSON(http.StatusOK, results)
}
