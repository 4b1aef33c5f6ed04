package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mantonx/amalgam/internal/apiroutes"
)

// ApiRootHandler lists every registered API endpoint
func ApiRootHandler(c *gin.Context) {
	routes := apiroutes.Get()
	c.JSON(http.StatusOK, gin.H{
		"message":           "Amalgam API",
		"version":           "v1",
		"registered_routes": routes,
		"count":             len(routes),
	})
}
