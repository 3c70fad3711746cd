package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pathakanu/myPlants/internal/api"
	"github.com/pathakanu/myPlants/internal/bot"
	"github.com/pathakanu/myPlants/internal/config"
	"github.com/pathakanu/myPlants/internal/database"
	"github.com/pathakanu/myPlants/internal/mqtt"
	"github.com/pathakanu/myPlants/internal/notify"
	myopenai "github.com/pathakanu/myPlants/internal/openai"
	"github.com/pathakanu/myPlants/internal/reminder"
	"github.com/pathakanu/myPlants/internal/store"
	"github.com/pathakanu/myPlants/internal/tracker"
	"github.com/pathakanu/myPlants/internal/twilio"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)
	for _, warning := range cfg.Warnings {
		logger.Warn("config: " + warning)
	}

	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath, logger)
	if err != nil {
		logger.WithError(err).Fatal("database init failed")
	}
	st := store.New(db)
	plants := tracker.New(st, time.Now, cfg.LocalTimezone, logger)

	openAIClient := myopenai.New(cfg.OpenAIAPIKey)

	var (
		channels notify.Multi
		webhook  bot.Verifier
	)
	if cfg.TwilioEnabled() {
		twilioClient := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
		webhook = twilioClient.WebhookValidator(cfg.TwilioWebhookURL)
		channels = append(channels, notify.NewWhatsApp(st, twilioClient, openAIClient))
		logger.WithField("from", cfg.TwilioWhatsAppNumber).Info("whatsapp delivery enabled")
	}

	var publisher mqtt.Publisher
	if cfg.MQTTBroker != "" {
		pub, err := mqtt.NewRealPublisher(cfg.MQTTBroker, cfg.MQTTTopic)
		if err != nil {
			logger.WithError(err).Warn("mqtt unavailable, reminders will not be published")
		} else {
			publisher = pub
			channels = append(channels, notify.NewMQTT(pub))
			logger.WithField("broker", cfg.MQTTBroker).Info("mqtt delivery enabled")
		}
	}

	var (
		locker      reminder.Locker
		redisLocker *reminder.RedisLocker
	)
	if cfg.RedisURL != "" {
		redisLocker, err = reminder.NewRedisLocker(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("invalid REDIS_URL")
		}
		locker = redisLocker
	}

	var notifier reminder.Notifier
	if len(channels) > 0 {
		notifier = channels
	}
	scanner := reminder.NewScanner(st, cfg.ReminderWindow, notifier, locker, logger)
	scheduler := reminder.NewScheduler(scanner, cfg.ScanSchedule, cfg.LocalTimezone, logger)
	if err := scheduler.Start(); err != nil {
		logger.WithError(err).Fatal("scheduler start")
	}

	var classifier bot.Classifier
	if openAIClient.Enabled() {
		classifier = openAIClient
	}
	opts := api.Options{
		Plants:     plants,
		Scanner:    scanner,
		DB:         st,
		CronSecret: cfg.CronSecret,
		Logger:     logger,
	}
	if webhook != nil {
		opts.Webhook = bot.New(plants, classifier, webhook, logger).Handler()
	}
	e := api.New(opts)

	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	waitForShutdown(e, scheduler, publisher, redisLocker, logger)
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func waitForShutdown(e *echo.Echo, scheduler *reminder.Scheduler, publisher mqtt.Publisher, redisLocker *reminder.RedisLocker, logger *logrus.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server shutdown error")
	}
	scheduler.Stop()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.WithError(err).Warn("mqtt close")
		}
	}
	if redisLocker != nil {
		if err := redisLocker.Close(); err != nil {
			logger.WithError(err).Warn("redis close")
		}
	}
}
