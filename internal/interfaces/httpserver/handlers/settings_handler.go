package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/domain/settings"
	"instareply/internal/interfaces/httpserver/responses"
)

// SettingsHandler serves the persona configuration routes.
type SettingsHandler struct {
	service *settings.Service
	log     zerolog.Logger
}

// NewSettingsHandler constructs the settings handler.
func NewSettingsHandler(service *settings.Service, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		log:     log.With().Str("component", "settings-handler").Logger(),
	}
}

// SettingsPayload is the persona as returned to the dashboard.
type SettingsPayload struct {
	SystemPrompt string    `json:"system_prompt"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Get returns the current persona, defaulted when none has been saved.
func (h *SettingsHandler) Get(reqCtx *gin.Context) {
	current, err := h.service.Get(reqCtx.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("settings read failed")
		responses.HandleError(reqCtx, err, "failed to read settings")
		return
	}
	reqCtx.JSON(http.StatusOK, SettingsPayload{
		SystemPrompt: current.SystemPrompt,
		UpdatedAt:    current.UpdatedAt,
	})
}

type settingsRequest struct {
	SystemPrompt string `json:"system_prompt" binding:"required"`
}

// Update saves the persona text.
func (h *SettingsHandler) Update(reqCtx *gin.Context) {
	var req settingsRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(reqCtx, "system_prompt is required")
		return
	}

	if err := h.service.Update(reqCtx.Request.Context(), req.SystemPrompt); err != nil {
		h.log.Error().Err(err).Msg("settings update failed")
		responses.HandleError(reqCtx, err, "failed to save settings")
		return
	}
	h.log.Info().Msg("persona updated")
	reqCtx.JSON(http.StatusOK, gin.H{"success": true})
}
