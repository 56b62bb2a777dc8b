package v1

import (
	"github.com/gin-gonic/gin"

	"deckgen-server/internal/interfaces/httpserver/handlers"
)

func registerFileRoutes(router gin.IRouter, handler *handlers.FileHandler) {
	group := router.Group("/files")
	group.POST("/upload", handler.Upload)
	group.POST("/update", handler.Update)
}
