package v1

import (
	"github.com/gin-gonic/gin"

	"deckgen-server/internal/interfaces/httpserver/handlers"
)

func registerPresentationRoutes(router gin.IRouter, handler *handlers.PresentationHandler) {
	group := router.Group("/presentation")
	group.POST("/create", handler.Create)
	group.POST("/prepare", handler.Prepare)
	group.GET("/stream/:id", handler.Stream)
	group.PATCH("/update", handler.Update)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
}
