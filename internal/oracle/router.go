package oracle

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/oracle/internal/oracle/handler/middleware"
	v1 "github.com/kiosk404/oracle/internal/oracle/handler/v1"
	"github.com/kiosk404/oracle/internal/oracle/service/chat/domain/service"
	"github.com/kiosk404/oracle/internal/oracle/service/tools"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	chatService     service.ChatService
	tools           *tools.Registry
	models          v1.ModelLister
	authConfig      *middleware.AuthConfig
	defaultThreadID string
	defaultModel    string
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	if deps.authConfig != nil {
		g.Use(middleware.BearerAuth(deps.authConfig))
	}
}

func installController(g *gin.Engine, deps *routerDeps) {
	turnHandler := v1.NewTurnHandler(deps.chatService, deps.defaultThreadID)
	threadHandler := v1.NewThreadHandler(deps.chatService)
	chatHandler := v1.NewChatCompletionsHandler(deps.chatService, deps.defaultThreadID, deps.defaultModel)
	toolHandler := v1.NewToolHandler(deps.tools)

	// --- /v1 route group ---
	apiV1 := g.Group("/v1")
	{
		// Turns.
		apiV1.POST("/turns", turnHandler.Create)
		apiV1.POST("/turns/stream", turnHandler.Stream)

		// Threads.
		apiV1.GET("/threads", threadHandler.List)
		apiV1.GET("/threads/:id/messages", threadHandler.Messages)
		apiV1.DELETE("/threads/:id", threadHandler.Delete)

		apiV1.GET("/tools", toolHandler.List)

		// OpenAI-compatible endpoints.
		apiV1.POST("/chat/completions", chatHandler.Handle)
		if deps.models != nil {
			apiV1.GET("/models", v1.NewModelHandler(deps.models).List)
		}
	}
}
