package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Zakat Engine API v1"})
}

// registerHomeRoutes registers the unauthenticated root route.
func registerHomeRoutes(r *gin.Engine) {
	r.GET("/", getHome)
}
