package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/domain/bot"
	"instareply/internal/interfaces/httpserver/responses"
)

// PlaygroundHandler runs simulated turns against the live persona and
// knowledge base without touching Instagram.
type PlaygroundHandler struct {
	responder Responder
	log       zerolog.Logger
}

// NewPlaygroundHandler constructs the playground handler.
func NewPlaygroundHandler(responder Responder, log zerolog.Logger) *PlaygroundHandler {
	return &PlaygroundHandler{
		responder: responder,
		log:       log.With().Str("component", "playground-handler").Logger(),
	}
}

type playgroundRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat runs one simulated turn under the playground identity.
func (h *PlaygroundHandler) Chat(reqCtx *gin.Context) {
	var req playgroundRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(reqCtx, "message is required")
		return
	}

	result, err := h.responder.Respond(reqCtx.Request.Context(), bot.PlaygroundUserID, req.Message, true)
	if err != nil {
		h.log.Error().Err(err).Msg("playground turn failed")
		responses.HandleError(reqCtx, err, "failed to generate reply")
		return
	}
	reqCtx.JSON(http.StatusOK, result)
}
