package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"safii-be/config"
	"safii-be/controllers"
	"safii-be/eventbus"
	"safii-be/repository"
	"safii-be/routes"
	"safii-be/services"
	"safii-be/storage"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to the .env file")
	port := flag.StringP("port", "p", "", "port to listen on (overrides PORT)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx := context.Background()

	client, db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}()
	if err := config.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	redisClient, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	images, err := storage.NewImageStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	issueRepo := repository.NewIssueRepository(db.Collection(config.IssuesCollection))
	upvoteRepo := repository.NewUpvoteRepository(db.Collection(config.UpvotesCollection))
	userRepo := repository.NewUserRepository(db.Collection(config.UsersCollection))
	events := eventbus.NewRedisEventBus(redisClient, cfg.EventStream)

	issueService := services.NewIssueService(issueRepo, upvoteRepo, userRepo, events)
	upvoteService := services.NewUpvoteService(issueRepo, upvoteRepo, events)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	geocoder := services.NewGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderZoom, nil)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = storage.MaxImageSize

	routes.Setup(r, routes.Dependencies{
		Auth: controllers.NewAuthController(authService, controllers.CookieSettings{
			Domain:     cfg.Domain,
			Production: cfg.IsProduction(),
			MaxAge:     int(cfg.TokenTTL.Seconds()),
		}),
		Issues:    controllers.NewIssueController(issueService),
		Upvotes:   controllers.NewUpvoteController(upvoteService),
		Uploads:   controllers.NewUploadController(images),
		Geocode:   controllers.NewGeocodeController(geocoder),
		JWTSecret: cfg.JWTSecret,
		Redis:     redisClient,
		RateLimit: routes.RateLimit{
			KeyPrefix: cfg.IssueRateKeyPrefix,
			Limit:     cfg.IssueRateLimit,
			Window:    cfg.IssueRateWindow,
		},
		UploadDir:   images.Root(),
		FrontendURL: cfg.FrontendURL,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Safii backend listening on port %s (%s)", cfg.Port, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Server exited")
}
