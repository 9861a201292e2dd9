package routes

import (
	"github.com/gin-gonic/gin"

	"safii-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, deps Dependencies) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", deps.Auth.RegisterUser)
		auth.POST("/login", deps.Auth.LoginUser)
		auth.POST("/admin/login", deps.Auth.AdminLogin)
		auth.POST("/logout", deps.Auth.LogoutUser)
		auth.GET("/me", middlewares.AuthMiddleware(deps.JWTSecret), deps.Auth.GetMe)
	}
}
