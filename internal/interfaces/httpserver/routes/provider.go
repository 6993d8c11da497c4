package routes

import (
	"github.com/gin-gonic/gin"

	"instareply/internal/interfaces/httpserver/handlers"
)

// Provider coordinates all route registrations.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{handlers: handlerProvider}
}

// Register attaches the API routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	api := engine.Group("/api")

	api.GET("/instagram-webhook", p.handlers.Webhook.Verify)
	api.POST("/instagram-webhook", p.handlers.Webhook.Receive)

	api.GET("/conversations", p.handlers.Conversation.List)
	api.GET("/conversations/:id", p.handlers.Conversation.History)
	api.POST("/conversations/:id", p.handlers.Conversation.Act)

	api.GET("/leads", p.handlers.Lead.List)
	api.PATCH("/leads", p.handlers.Lead.UpdateStatus)

	api.GET("/settings", p.handlers.Settings.Get)
	api.POST("/settings", p.handlers.Settings.Update)

	api.GET("/upload", p.handlers.Knowledge.List)
	api.POST("/upload", p.handlers.Knowledge.Upload)
	api.DELETE("/upload/:id", p.handlers.Knowledge.Delete)

	api.GET("/analytics", p.handlers.Analytics.Summary)
	api.POST("/playground", p.handlers.Playground.Chat)
}
