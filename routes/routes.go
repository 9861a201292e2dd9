package routes

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"safii-be/controllers"
	"safii-be/middlewares"
)

// Dependencies are the handlers and middleware settings the router needs.
type Dependencies struct {
	Auth    *controllers.AuthController
	Issues  *controllers.IssueController
	Upvotes *controllers.UpvoteController
	Uploads *controllers.UploadController
	Geocode *controllers.GeocodeController

	JWTSecret   string
	Redis       *redis.Client
	RateLimit   RateLimit
	UploadDir   string
	FrontendURL string
}

// RateLimit configures the per-user issue submission limiter.
type RateLimit struct {
	KeyPrefix string
	Limit     int
	Window    time.Duration
}

// Setup registers every route on r.
func Setup(r *gin.Engine, deps Dependencies) {
	useJSONFieldNames()

	r.Use(middlewares.CORSMiddleware(deps.FrontendURL))

	r.GET("/health", controllers.Health)
	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	AuthRoutes(r, deps)
	IssueRoutes(r, deps)
	UploadRoutes(r, deps)
	GeocodeRoutes(r, deps)

	r.NoRoute(controllers.NotFound)
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation messages name fields as clients send them.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
