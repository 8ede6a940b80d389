package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	RedisURL    string

	// Firebase Config
	FirebaseCredentials string

	// Twilio Config
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// Google Maps (reverse geocoding)
	MapsAPIKey string

	// Session Controller
	CountdownDuration time.Duration
	LocationBudget    time.Duration

	// Motion watcher
	MotionThreshold float64 // m/s² per axis
	MotionCooldown  time.Duration

	// Deviation engine
	DeviationThreshold float64 // meters off route
	DeviationConfirm   time.Duration
	DeviationRepeat    time.Duration

	// Live broadcast
	BroadcastInterval time.Duration
	BroadcastMaxRuns  int

	// Evidence recorder
	RecorderAutoStop time.Duration

	// Retention
	EventRetention     time.Duration
	RecordingRetention time.Duration

	EmailProvider string

	// SMTP Settings
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "mongodb://localhost:27017/safeher"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		// Firebase
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		// Twilio
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		// Maps
		MapsAPIKey: getEnv("MAPS_API_KEY", ""),

		// Core timings and thresholds
		CountdownDuration:  getEnvAsDuration("COUNTDOWN_SECONDS", 5, time.Second),
		LocationBudget:     getEnvAsDuration("LOCATION_BUDGET_SECONDS", 20, time.Second),
		MotionThreshold:    getEnvAsFloat("MOTION_THRESHOLD_MS2", 20),
		MotionCooldown:     getEnvAsDuration("MOTION_COOLDOWN_SECONDS", 60, time.Second),
		DeviationThreshold: getEnvAsFloat("DEVIATION_THRESHOLD_METERS", 150),
		DeviationConfirm:   getEnvAsDuration("DEVIATION_CONFIRM_SECONDS", 30, time.Second),
		DeviationRepeat:    getEnvAsDuration("DEVIATION_REPEAT_SECONDS", 120, time.Second),
		BroadcastInterval:  getEnvAsDuration("BROADCAST_INTERVAL_SECONDS", 120, time.Second),
		BroadcastMaxRuns:   getEnvAsInt("BROADCAST_MAX_RUNS", 30),
		RecorderAutoStop:   getEnvAsDuration("RECORDER_AUTO_STOP_MINUTES", 90, time.Minute),
		EventRetention:     getEnvAsDuration("EVENT_RETENTION_DAYS", 90, 24*time.Hour),
		RecordingRetention: getEnvAsDuration("RECORDING_RETENTION_DAYS", 30, 24*time.Hour),

		// Email settings
		EmailProvider: getEnv("EMAIL_PROVIDER", "smtp"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", "noreply@safeher.app"),
	}
}

func InitRedis(cfg *Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Fallback to default config
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	client := redis.NewClient(opt)
	return client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * unit
}
