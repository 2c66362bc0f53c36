package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                string
	MongoURI           string
	MongoDB            string
	ServerAddr         string
	FrontendOrigin     string
	RateLimitBookings  int
	RateLimitReviews   int
	RateLimitWindowSec int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	SlotCacheTTLSec    int
	JWTSecret          string
	AccessTTLMinutes   int
	RefreshTTLMinutes  int
	BrevoAPIKey        string
	BrevoSenderEmail   string
	BrevoSenderName    string
	BrevoSandbox       bool
	ReminderCronSpec   string
	Timezone           *time.Location
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("TZ", "Asia/Kolkata"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017/curalink"),
		MongoDB:            getEnv("MONGO_DB", "curalink"),
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		RateLimitBookings:  getEnvInt("RATE_LIMIT_BOOKINGS", 10),
		RateLimitReviews:   getEnvInt("RATE_LIMIT_REVIEWS", 5),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		SlotCacheTTLSec:    getEnvInt("SLOT_CACHE_TTL_SECONDS", 30),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:   getEnvInt("ACCESS_TTL_MINUTES", 60),
		RefreshTTLMinutes:  getEnvInt("REFRESH_TTL_MINUTES", 43200),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:   getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:    getEnv("BREVO_SENDER_NAME", "CuraLink"),
		BrevoSandbox:       getEnv("BREVO_SANDBOX", "false") == "true",
		ReminderCronSpec:   getEnv("REMINDER_CRON", "0 7 * * *"),
		Timezone:           loc,
	}

	return cfg, nil
}
