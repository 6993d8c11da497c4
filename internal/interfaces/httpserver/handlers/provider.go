package handlers

import (
	"github.com/rs/zerolog"

	"instareply/internal/domain/conversation"
	"instareply/internal/domain/knowledge"
	"instareply/internal/domain/lead"
	"instareply/internal/domain/settings"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Webhook      *WebhookHandler
	Conversation *ConversationHandler
	Lead         *LeadHandler
	Settings     *SettingsHandler
	Knowledge    *KnowledgeHandler
	Analytics    *AnalyticsHandler
	Playground   *PlaygroundHandler
}

// ProviderDeps carries everything the handlers need.
type ProviderDeps struct {
	VerifyToken  string
	BotAccountID string
	Store        conversation.Store
	Responder    Responder
	Profiles     ProfileFetcher
	Sender       Sender
	Leads        lead.Repository
	Settings     *settings.Service
	Knowledge    *knowledge.Service
	Analytics    Summarizer
}

// NewProvider constructs the handler provider.
func NewProvider(deps ProviderDeps, log zerolog.Logger) *Provider {
	return &Provider{
		Webhook:      NewWebhookHandler(deps.VerifyToken, deps.BotAccountID, deps.Store, deps.Responder, deps.Profiles, log),
		Conversation: NewConversationHandler(deps.Store, deps.Sender, log),
		Lead:         NewLeadHandler(deps.Leads, log),
		Settings:     NewSettingsHandler(deps.Settings, log),
		Knowledge:    NewKnowledgeHandler(deps.Knowledge, log),
		Analytics:    NewAnalyticsHandler(deps.Analytics, log),
		Playground:   NewPlaygroundHandler(deps.Responder, log),
	}
}
