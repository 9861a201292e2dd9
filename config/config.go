package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything main needs to build the server.
type Config struct {
	Port          string
	Environment   string
	Domain        string
	FrontendURL   string
	MongoURI      string
	MongoDatabase string
	RedisAddress  string
	RedisPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	IssueRateLimit     int
	IssueRateWindow    time.Duration
	IssueRateKeyPrefix string

	UploadDir     string
	PublicBaseURL string

	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderZoom      int

	EventStream string
}

// Load reads the configuration from the environment.
func Load() Config {
	port := getEnv("PORT", "5000")
	return Config{
		Port:          port,
		Environment:   getEnv("GO_ENV", "development"),
		Domain:        getEnv("DOMAIN", ""),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "safii"),
		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenTTL:      getDuration("TOKEN_TTL", 72*time.Hour),

		IssueRateLimit:     getInt("ISSUE_RATE_LIMIT", 10),
		IssueRateWindow:    getDuration("ISSUE_RATE_WINDOW", 15*time.Minute),
		IssueRateKeyPrefix: getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),

		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "Safii/1.0 (issue reporting)"),
		GeocoderZoom:      getInt("GEOCODER_ZOOM", 14),

		EventStream: getEnv("EVENT_STREAM", "issue-events"),
	}
}

// IsProduction reports whether cookies must be marked secure.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
