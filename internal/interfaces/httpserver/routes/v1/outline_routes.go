package v1

import (
	"github.com/gin-gonic/gin"

	"deckgen-server/internal/interfaces/httpserver/handlers"
)

func registerOutlineRoutes(router gin.IRouter, handler *handlers.OutlineHandler) {
	router.POST("/outline/stream", handler.Stream)
}
