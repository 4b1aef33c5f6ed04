package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealthCheck returns the service status
func HandleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "amalgam",
	})
}
