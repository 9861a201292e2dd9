package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Safii Backend API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Route not found",
		"message": "The requested route " + c.Request.URL.Path + " does not exist",
	})
}
