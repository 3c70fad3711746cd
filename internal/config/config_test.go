package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SQLITE_PATH", "SCAN_SCHEDULE", "REMINDER_WINDOW_HOURS", "MQTT_TOPIC", "LOG_FORMAT", "TWILIO_ACCOUNT_SID"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SQLitePath != "plants.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.ScanSchedule != "@every 30m" {
		t.Errorf("ScanSchedule = %q", cfg.ScanSchedule)
	}
	if cfg.ReminderWindow != 24*time.Hour {
		t.Errorf("ReminderWindow = %s, want 24h", cfg.ReminderWindow)
	}
	if cfg.LogJSON {
		t.Error("LogJSON should default to false")
	}
	if cfg.TwilioEnabled() {
		t.Error("Twilio should be disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOCAL_TIMEZONE", "UTC")
	t.Setenv("REMINDER_WINDOW_HOURS", "48")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_WHATSAPP_NUMBER", "+15550000")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.LocalTimezone != time.UTC {
		t.Errorf("LocalTimezone = %v, want UTC", cfg.LocalTimezone)
	}
	if cfg.ReminderWindow != 48*time.Hour {
		t.Errorf("ReminderWindow = %s, want 48h", cfg.ReminderWindow)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", cfg.Warnings)
	}
	if !cfg.LogJSON {
		t.Error("LogJSON should be true for LOG_FORMAT=json")
	}
	if !cfg.TwilioEnabled() {
		t.Error("Twilio should be enabled with all credentials set")
	}
}

func TestLoadRejectsBadWindow(t *testing.T) {
	for _, value := range []string{"-3", "soon", "12", "0"} {
		t.Setenv("REMINDER_WINDOW_HOURS", value)
		cfg := Load()
		if cfg.ReminderWindow != MinReminderWindow {
			t.Errorf("REMINDER_WINDOW_HOURS=%s: ReminderWindow = %s, want %s", value, cfg.ReminderWindow, MinReminderWindow)
		}
		if len(cfg.Warnings) == 0 {
			t.Errorf("REMINDER_WINDOW_HOURS=%s: expected a warning", value)
		}
	}
}

func TestLoadReportsBadTimezone(t *testing.T) {
	t.Setenv("LOCAL_TIMEZONE", "Mars/Olympus")
	t.Setenv("REMINDER_WINDOW_HOURS", "")
	cfg := Load()
	if cfg.LocalTimezone != time.Local {
		t.Errorf("LocalTimezone = %v, want time.Local", cfg.LocalTimezone)
	}
	if len(cfg.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", cfg.Warnings)
	}
}
