package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/domain/conversation"
	"instareply/internal/interfaces/httpserver/responses"
)

// Sender dispatches an outbound message on behalf of the operator.
type Sender interface {
	SendMessage(ctx context.Context, recipientID, text string) error
}

// ConversationHandler serves the dashboard's conversation routes.
type ConversationHandler struct {
	store  conversation.Store
	sender Sender
	log    zerolog.Logger
}

// NewConversationHandler constructs the conversation handler.
func NewConversationHandler(store conversation.Store, sender Sender, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		store:  store,
		sender: sender,
		log:    log.With().Str("component", "conversation-handler").Logger(),
	}
}

// StatePayload is a conversation row as returned to the dashboard.
type StatePayload struct {
	UserID        string    `json:"user_id"`
	IsPaused      bool      `json:"is_paused"`
	LastMessageAt time.Time `json:"last_message_at"`
	UserName      *string   `json:"user_name"`
	Username      *string   `json:"username"`
	ProfilePic    *string   `json:"profile_pic"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessagePayload is one history entry.
type MessagePayload struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns all conversation states, most recently active first.
func (h *ConversationHandler) List(reqCtx *gin.Context) {
	states, err := h.store.ListStates(reqCtx.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list conversations failed")
		responses.HandleError(reqCtx, err, "failed to list conversations")
		return
	}

	payload := make([]StatePayload, len(states))
	for i, s := range states {
		payload[i] = StatePayload{
			UserID:        s.UserID,
			IsPaused:      s.IsPaused,
			LastMessageAt: s.LastMessageAt,
			UserName:      s.UserName,
			Username:      s.Username,
			ProfilePic:    s.ProfilePic,
			CreatedAt:     s.CreatedAt,
		}
	}
	reqCtx.JSON(http.StatusOK, payload)
}

// History returns one conversation's full thread, oldest first.
func (h *ConversationHandler) History(reqCtx *gin.Context) {
	userID := reqCtx.Param("id")
	messages, err := h.store.History(reqCtx.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("history fetch failed")
		responses.HandleError(reqCtx, err, "failed to fetch conversation history")
		return
	}

	payload := make([]MessagePayload, len(messages))
	for i, m := range messages {
		payload[i] = MessagePayload{
			ID:        m.ID,
			UserID:    m.UserID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	reqCtx.JSON(http.StatusOK, payload)
}

type conversationActionRequest struct {
	Action   string `json:"action" binding:"required"`
	IsPaused *bool  `json:"is_paused"`
	Message  string `json:"message"`
}

// Act applies an operator action: pause takeover or a manual send.
func (h *ConversationHandler) Act(reqCtx *gin.Context) {
	userID := reqCtx.Param("id")

	var req conversationActionRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(reqCtx, "action is required")
		return
	}

	switch req.Action {
	case "toggle_pause":
		h.togglePause(reqCtx, userID, req)
	case "send_message":
		h.sendMessage(reqCtx, userID, req)
	default:
		responses.HandleValidationError(reqCtx, "unknown action")
	}
}

func (h *ConversationHandler) togglePause(reqCtx *gin.Context, userID string, req conversationActionRequest) {
	if req.IsPaused == nil {
		responses.HandleValidationError(reqCtx, "is_paused is required for toggle_pause")
		return
	}
	if err := h.store.SetPaused(reqCtx.Request.Context(), userID, *req.IsPaused); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("toggle pause failed")
		responses.HandleError(reqCtx, err, "failed to update pause state")
		return
	}
	h.log.Info().Str("user_id", userID).Bool("is_paused", *req.IsPaused).Msg("pause state updated")
	reqCtx.JSON(http.StatusOK, gin.H{"user_id": userID, "is_paused": *req.IsPaused})
}

// sendMessage delivers an operator-typed reply and records it as an
// assistant turn so the thread stays coherent for later prompts.
func (h *ConversationHandler) sendMessage(reqCtx *gin.Context, userID string, req conversationActionRequest) {
	if req.Message == "" {
		responses.HandleValidationError(reqCtx, "message is required for send_message")
		return
	}

	ctx := reqCtx.Request.Context()
	if err := h.sender.SendMessage(ctx, userID, req.Message); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("manual send failed")
		responses.HandleError(reqCtx, err, "failed to send message")
		return
	}

	if err := h.store.AppendMessage(ctx, userID, conversation.RoleAssistant, req.Message); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("record manual message failed")
	}
	patch := conversation.StatePatch{LastMessageAt: time.Now().UTC()}
	if err := h.store.UpsertState(ctx, userID, patch); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("touch conversation failed")
	}

	reqCtx.JSON(http.StatusOK, gin.H{"success": true})
}
