package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MinReminderWindow is the shortest useful lookback. Scan reminders are also
// unique per plant and UTC day, so a shorter window would never allow a
// second reminder on the same day.
const MinReminderWindow = 24 * time.Hour

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port                 string
	DatabaseURL          string
	SQLitePath           string
	LocalTimezone        *time.Location
	ScanSchedule         string
	ReminderWindow       time.Duration
	CronSecret           string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	TwilioWebhookURL     string
	OpenAIAPIKey         string
	MQTTBroker           string
	MQTTTopic            string
	RedisURL             string
	LogLevel             string
	LogJSON              bool

	// Warnings lists values that were rejected and replaced by a default.
	// The logger does not exist yet while loading, so main reports them.
	Warnings []string
}

// Load reads configuration values and prepares defaults where applicable.
func Load() *Config {
	_ = godotenv.Load()
	cfg := &Config{}

	timezoneName := getenvDefault("LOCAL_TIMEZONE", "Local")
	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		cfg.warnf("invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", timezoneName, err)
		location = time.Local
	}

	windowHours := cfg.parseIntEnv("REMINDER_WINDOW_HOURS", 24)
	window := time.Duration(windowHours) * time.Hour
	if window < MinReminderWindow {
		cfg.warnf("REMINDER_WINDOW_HOURS=%d is below the one-reminder-per-day limit; using %d", windowHours, int(MinReminderWindow.Hours()))
		window = MinReminderWindow
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "plants.db")
	cfg.LocalTimezone = location
	cfg.ScanSchedule = getenvDefault("SCAN_SCHEDULE", "@every 30m")
	cfg.ReminderWindow = window
	cfg.CronSecret = os.Getenv("CRON_SECRET")
	cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.TwilioWhatsAppNumber = os.Getenv("TWILIO_WHATSAPP_NUMBER")
	cfg.TwilioWebhookURL = os.Getenv("TWILIO_WEBHOOK_URL")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	cfg.MQTTTopic = getenvDefault("MQTT_TOPIC", "plants/reminders")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogJSON = getenvDefault("LOG_FORMAT", "text") == "json"
	return cfg
}

// TwilioEnabled reports whether enough credentials are present to send WhatsApp messages.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppNumber != ""
}

func (c *Config) warnf(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func getenvDefault(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	return value
}

// parseIntEnv returns the integer value for an environment variable or the provided default.
func (c *Config) parseIntEnv(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		c.warnf("unable to parse %s=%q as int: %v", key, value, err)
		return def
	}
	return parsed
}
