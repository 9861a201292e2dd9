package routes

import (
	"github.com/gin-gonic/gin"

	"safii-be/middlewares"
)

// IssueRoutes sets up the issue, upvote and admin routes
func IssueRoutes(r *gin.Engine, deps Dependencies) {
	authenticated := middlewares.AuthMiddleware(deps.JWTSecret)
	adminOnly := middlewares.AdminOnly()

	issue := r.Group("/api/issues")
	{
		issue.POST("/submit",
			authenticated,
			middlewares.IssueRateLimiter(deps.Redis, deps.RateLimit.KeyPrefix, deps.RateLimit.Limit, deps.RateLimit.Window),
			deps.Issues.SubmitIssue,
		)
		issue.GET("", deps.Issues.GetAllIssues)
		issue.GET("/mine", authenticated, deps.Issues.GetMyIssues)
		issue.GET("/:id", deps.Issues.GetIssue)
		issue.PUT("/:id", authenticated, adminOnly, deps.Issues.UpdateIssue)
		issue.POST("/:id/upvote", authenticated, deps.Upvotes.ToggleUpvote)
		issue.GET("/:id/upvote", authenticated, deps.Upvotes.GetUpvoteStatus)
	}

	admin := r.Group("/api/admin", authenticated, adminOnly)
	{
		admin.GET("/stats", deps.Issues.GetStats)
	}
}

// UploadRoutes sets up image upload
func UploadRoutes(r *gin.Engine, deps Dependencies) {
	r.POST("/api/uploads", middlewares.AuthMiddleware(deps.JWTSecret), deps.Uploads.UploadImage)
}

// GeocodeRoutes sets up reverse geocoding
func GeocodeRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/api/geocode/reverse", deps.Geocode.ReverseGeocode)
}
