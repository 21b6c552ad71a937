package config

import (
	"os"
	"strconv"
	"time"
)

type S3 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type Tier struct {
	PostsPerMonth int
}

type Scheduling struct {
	GenerationSpec       string
	PublishSweepInterval time.Duration
	PublishHourUTC       int
	MetricsDelay         time.Duration
	VideoPollInterval    time.Duration
	VideoMaxWait         time.Duration
	TokenRefreshWindow   time.Duration
}

type Config struct {
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	GeminiAPIKey         string
	FacebookClientID     string
	FacebookClientSecret string
	FacebookRedirectURI  string
	S3                   S3
	SecretKey            string
	CookieName           string
	Scheduling           Scheduling
	Tiers                map[string]Tier
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", ""),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		FacebookRedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		S3: S3{
			AccountID:     getEnv("S3_ACCOUNT_ID", ""),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			BucketName:    getEnv("S3_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "sm_session"),
		Scheduling: Scheduling{
			GenerationSpec:       getEnv("GENERATION_CRON", "@daily"),
			PublishSweepInterval: getEnvDuration("PUBLISH_SWEEP_INTERVAL", 15*time.Minute),
			PublishHourUTC:       getEnvInt("PUBLISH_HOUR_UTC", 10),
			MetricsDelay:         getEnvDuration("METRICS_DELAY", time.Hour),
			VideoPollInterval:    getEnvDuration("VIDEO_POLL_INTERVAL", 10*time.Second),
			VideoMaxWait:         getEnvDuration("VIDEO_MAX_WAIT", 5*time.Minute),
			TokenRefreshWindow:   getEnvDuration("TOKEN_REFRESH_WINDOW", 30*time.Minute),
		},
		Tiers: map[string]Tier{
			"basic": {PostsPerMonth: 25},
			"pro":   {PostsPerMonth: 30},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
