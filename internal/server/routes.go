package server

import (
	"github.com/gin-gonic/gin"

	"github.com/mantonx/amalgam/internal/apiroutes"
	"github.com/mantonx/amalgam/internal/modules/preferencesmodule"
	"github.com/mantonx/amalgam/internal/server/handlers"
)

func setupRoutes(r *gin.Engine, prefs *preferencesmodule.Module) {
	api := r.Group("/api")
	{
		setupHealthRoutes(api)

		v1 := api.Group("/v1")
		prefs.RegisterRoutes(v1)
	}

	r.GET("/api", handlers.ApiRootHandler)
	apiroutes.Register("/api", "GET", "Lists all available API endpoints.")
}

func setupHealthRoutes(api *gin.RouterGroup) {
	api.GET("/health", handlers.HandleHealthCheck)
	apiroutes.Register(api.BasePath()+"/health", "GET", "System health check.")
}
