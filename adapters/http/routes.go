package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/codejourney/internal/application/usecase/profile"
	"github.com/khoahotran/codejourney/pkg/auth"
	"github.com/khoahotran/codejourney/pkg/logger"
)

type Handlers struct {
	Profile *ProfileHandler
	// History is optional; without a lookup store the history routes are not mounted.
	History *HistoryHandler
	Hub     *SessionHub
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(router *gin.Engine, h Handlers, uc *profileUC.ProfileUseCase, jwtSvc *auth.JWTService, log logger.Logger) {
	router.Use(ErrorMiddleware(log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.GET("/platforms", h.Profile.ListPlatforms)
		api.POST("/sessions", h.Profile.CreateSession)

		if h.History != nil {
			api.GET("/history", h.History.ListLookups)
			api.GET("/history/rss", h.History.GenerateRSS)
		}

		if h.Hub != nil {
			api.GET("/session/ws", WebsocketSessionMiddleware(jwtSvc), h.Hub.Stream(uc))
		}

		s := api.Group("/session")
		s.Use(SessionMiddleware(jwtSvc))
		{
			s.GET("", h.Profile.GetSession)
			s.PUT("/handle", h.Profile.SetHandle)
			s.POST("/theme/toggle", h.Profile.ToggleTheme)
			s.POST("/platforms/:platform/fetch", h.Profile.Fetch)
			s.POST("/fetch-all", h.Profile.FetchAll)
		}
	}
}
