package route

import (
	"net/http"

	"github.com/Coubiac/signstamp/internal/api/middleware"
	"github.com/Coubiac/signstamp/internal/app"
	"github.com/Coubiac/signstamp/internal/logger"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, appCtx *app.App) {
	r.Use(middleware.HoneybadgerMiddleware(logger.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "UP",
			"listeners": appCtx.Events.Listeners(),
		})
	})

	apiRouter := r.Group("/api")

	NewCollectionRouter(apiRouter, appCtx.Signatures, appCtx.Snippets)
	NewDocumentRouter(apiRouter, appCtx.Documents)
	NewEventRouter(apiRouter, appCtx.Events, appCtx.Bridge)
}
