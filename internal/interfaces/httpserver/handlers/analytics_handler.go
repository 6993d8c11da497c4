package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/infrastructure/repository/analytics"
	"instareply/internal/interfaces/httpserver/responses"
)

// Summarizer aggregates conversation activity for the dashboard.
type Summarizer interface {
	Summarize(ctx context.Context, now time.Time) (*analytics.Summary, error)
}

// AnalyticsHandler serves the dashboard analytics route.
type AnalyticsHandler struct {
	summarizer Summarizer
	log        zerolog.Logger
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(summarizer Summarizer, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		summarizer: summarizer,
		log:        log.With().Str("component", "analytics-handler").Logger(),
	}
}

// Summary returns message totals, active users, and the weekly series.
func (h *AnalyticsHandler) Summary(reqCtx *gin.Context) {
	summary, err := h.summarizer.Summarize(reqCtx.Request.Context(), time.Now().UTC())
	if err != nil {
		h.log.Error().Err(err).Msg("analytics aggregation failed")
		responses.HandleError(reqCtx, err, "failed to compute analytics")
		return
	}
	reqCtx.JSON(http.StatusOK, summary)
}
