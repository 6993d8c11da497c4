package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/domain/bot"
	"instareply/internal/domain/conversation"
	"instareply/internal/infrastructure/instagram"
	"instareply/internal/infrastructure/metrics"
)

// Responder runs one bot turn for an inbound message.
type Responder interface {
	Respond(ctx context.Context, userID, userMessage string, simulated bool) (*bot.Result, error)
}

// ProfileFetcher looks up a sender's public profile.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (*instagram.Profile, error)
}

// WebhookHandler terminates the Instagram webhook.
type WebhookHandler struct {
	verifyToken  string
	botAccountID string
	store        conversation.Store
	responder    Responder
	profiles     ProfileFetcher
	log          zerolog.Logger
}

// NewWebhookHandler constructs the webhook handler. botAccountID is the
// configured business account; when empty the self-loop guard is disabled and
// echo detection alone covers outbound reflections.
func NewWebhookHandler(
	verifyToken string,
	botAccountID string,
	store conversation.Store,
	responder Responder,
	profiles ProfileFetcher,
	log zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifyToken:  verifyToken,
		botAccountID: botAccountID,
		store:        store,
		responder:    responder,
		profiles:     profiles,
		log:          log.With().Str("component", "webhook").Logger(),
	}
}

// Verify answers the subscription handshake.
func (h *WebhookHandler) Verify(reqCtx *gin.Context) {
	mode := reqCtx.Query("hub.mode")
	token := reqCtx.Query("hub.verify_token")
	challenge := reqCtx.Query("hub.challenge")

	if mode == "" || token == "" {
		reqCtx.Status(http.StatusBadRequest)
		return
	}
	if mode != "subscribe" || token != h.verifyToken {
		h.log.Warn().Msg("webhook verification failed")
		reqCtx.Status(http.StatusForbidden)
		return
	}

	h.log.Info().Msg("webhook verified")
	reqCtx.String(http.StatusOK, challenge)
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message *struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []messagingEvent `json:"messaging"`
	} `json:"entry"`
}

// Receive processes a webhook delivery. The provider retries non-200
// responses, so every recognized delivery is acknowledged even when
// individual events fail.
func (h *WebhookHandler) Receive(reqCtx *gin.Context) {
	var payload webhookPayload
	if err := reqCtx.ShouldBindJSON(&payload); err != nil {
		h.log.Error().Err(err).Msg("malformed webhook body")
		reqCtx.JSON(http.StatusInternalServerError, gin.H{"error": "malformed webhook payload"})
		return
	}

	if payload.Object != "instagram" && payload.Object != "page" {
		reqCtx.Status(http.StatusNotFound)
		return
	}

	ctx := reqCtx.Request.Context()
	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			h.processEvent(ctx, event)
		}
	}

	reqCtx.String(http.StatusOK, "EVENT_RECEIVED")
}

func (h *WebhookHandler) processEvent(ctx context.Context, event messagingEvent) {
	if event.Message == nil || event.Message.Text == "" {
		metrics.WebhookEventsTotal.WithLabelValues("non_text").Inc()
		return
	}
	if event.Message.IsEcho {
		metrics.WebhookEventsTotal.WithLabelValues("echo").Inc()
		return
	}
	senderID := event.Sender.ID
	if h.botAccountID != "" && senderID == h.botAccountID {
		h.log.Debug().Str("sender_id", senderID).Msg("ignoring message from bot account")
		metrics.WebhookEventsTotal.WithLabelValues("self").Inc()
		return
	}

	// Only messages that carry a provider ID participate in dedup. Claiming
	// an empty ID would alias every ID-less message to the same row.
	if mid := event.Message.MID; mid != "" {
		claimed, err := h.store.TryClaimMessageID(ctx, mid)
		if err != nil {
			// Fail closed: better to drop one message than reply twice.
			h.log.Error().Err(err).Str("mid", mid).Msg("dedup claim failed, skipping event")
			metrics.WebhookEventsTotal.WithLabelValues("claim_error").Inc()
			return
		}
		if !claimed {
			h.log.Debug().Str("mid", mid).Msg("duplicate message, already processed")
			metrics.WebhookEventsTotal.WithLabelValues("duplicate").Inc()
			return
		}
	}

	h.upsertSender(ctx, senderID)

	h.log.Info().Str("sender_id", senderID).Str("mid", event.Message.MID).Msg("processing inbound message")
	if _, err := h.responder.Respond(ctx, senderID, event.Message.Text, false); err != nil {
		h.log.Error().Err(err).Str("sender_id", senderID).Msg("bot turn failed")
		metrics.WebhookEventsTotal.WithLabelValues("turn_error").Inc()
		return
	}
	metrics.WebhookEventsTotal.WithLabelValues("processed").Inc()
}

// upsertSender refreshes the conversation state and cached profile. Profile
// lookups are best effort; the state row is written regardless.
func (h *WebhookHandler) upsertSender(ctx context.Context, senderID string) {
	patch := conversation.StatePatch{LastMessageAt: time.Now().UTC()}

	profile, err := h.profiles.FetchProfile(ctx, senderID)
	if err != nil {
		h.log.Warn().Err(err).Str("sender_id", senderID).Msg("profile fetch failed")
	}
	if profile != nil {
		if profile.Name != "" {
			patch.UserName = &profile.Name
		}
		if profile.Username != "" {
			patch.Username = &profile.Username
		}
		if profile.ProfilePic != "" {
			patch.ProfilePic = &profile.ProfilePic
		}
	}

	if err := h.store.UpsertState(ctx, senderID, patch); err != nil {
		h.log.Error().Err(err).Str("sender_id", senderID).Msg("state upsert failed")
	}
}
