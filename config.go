package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"climateguard/internal/cronjobs"
	"climateguard/internal/news"
)

type Config struct {
	Port              string
	MongoURI          string // empty keeps everything in memory
	MongoDB           string
	JWTSecret         string
	JWTIssuer         string
	GoogleMapsAPIKey  string
	ReverseGeocodeURL string
	IPGeoURL          string
	IPGeoAPIKey       string
	RedisURL          string
	NewsFeeds         []news.Feed
	CORSOrigins       []string
	RefreshSchedule   string
	NewsSchedule      string
}

func loadConfig() Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := Config{
		Port:              getenv("PORT", "8080"),
		MongoURI:          getenv("MONGO_URI", ""),
		MongoDB:           getenv("MONGO_DB", "climateguard"),
		JWTSecret:         getenv("JWT_SECRET", "change_me"),
		JWTIssuer:         getenv("JWT_ISSUER", "climateguard"),
		GoogleMapsAPIKey:  getenv("GOOGLE_MAPS_API_KEY", ""),
		ReverseGeocodeURL: getenv("REVERSE_GEOCODE_URL", ""),
		IPGeoURL:          getenv("IP_GEO_URL", ""),
		IPGeoAPIKey:       getenv("IP_GEO_API_KEY", ""),
		RedisURL:          getenv("REDIS_URL", ""),
		NewsFeeds:         news.ParseFeeds(getenv("NEWS_FEEDS", "")),
		CORSOrigins:       splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")),
		RefreshSchedule:   getenv("REFRESH_SCHEDULE", cronjobs.DefaultRefreshSchedule),
		NewsSchedule:      getenv("NEWS_SCHEDULE", cronjobs.DefaultNewsSchedule),
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
