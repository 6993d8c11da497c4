package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/domain/lead"
	"instareply/internal/interfaces/httpserver/responses"
)

// LeadHandler serves the dashboard's lead routes.
type LeadHandler struct {
	repo lead.Repository
	log  zerolog.Logger
}

// NewLeadHandler constructs the lead handler.
func NewLeadHandler(repo lead.Repository, log zerolog.Logger) *LeadHandler {
	return &LeadHandler{
		repo: repo,
		log:  log.With().Str("component", "lead-handler").Logger(),
	}
}

// LeadPayload is a lead row with the sender's cached profile fields.
type LeadPayload struct {
	ID            uint      `json:"id"`
	UserID        string    `json:"user_id"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone"`
	Status        string    `json:"status"`
	SourceMessage string    `json:"source_message"`
	CreatedAt     time.Time `json:"created_at"`
	UserName      *string   `json:"user_name"`
	Username      *string   `json:"username"`
	ProfilePic    *string   `json:"profile_pic"`
}

// List returns all leads, newest first.
func (h *LeadHandler) List(reqCtx *gin.Context) {
	leads, err := h.repo.List(reqCtx.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list leads failed")
		responses.HandleError(reqCtx, err, "failed to list leads")
		return
	}

	payload := make([]LeadPayload, len(leads))
	for i, l := range leads {
		payload[i] = LeadPayload{
			ID:            l.ID,
			UserID:        l.UserID,
			Email:         l.Email,
			Phone:         l.Phone,
			Status:        l.Status,
			SourceMessage: l.SourceMessage,
			CreatedAt:     l.CreatedAt,
			UserName:      l.UserName,
			Username:      l.Username,
			ProfilePic:    l.ProfilePic,
		}
	}
	reqCtx.JSON(http.StatusOK, payload)
}

type leadStatusRequest struct {
	ID     uint   `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

var validLeadStatuses = map[string]bool{
	lead.StatusNew:       true,
	lead.StatusContacted: true,
	lead.StatusQualified: true,
	lead.StatusLost:      true,
}

// UpdateStatus moves a lead through the operator-managed pipeline.
func (h *LeadHandler) UpdateStatus(reqCtx *gin.Context) {
	var req leadStatusRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(reqCtx, "id and status are required")
		return
	}
	if !validLeadStatuses[req.Status] {
		responses.HandleValidationError(reqCtx, "invalid lead status")
		return
	}

	if err := h.repo.UpdateStatus(reqCtx.Request.Context(), req.ID, req.Status); err != nil {
		h.log.Error().Err(err).Uint("lead_id", req.ID).Msg("lead status update failed")
		responses.HandleError(reqCtx, err, "failed to update lead")
		return
	}
	reqCtx.JSON(http.StatusOK, gin.H{"id": req.ID, "status": req.Status})
}
