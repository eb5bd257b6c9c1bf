package main

import (
	"os"
	"os/signal"
	"syscall"

	"usermgmt/internal/config"
	"usermgmt/internal/database"
	"usermgmt/internal/logging"
	"usermgmt/internal/repositories"
	"usermgmt/internal/services"
	"usermgmt/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	v, err := config.NewViper()
	if err != nil {
		logrus.Fatalf("Failed to read configuration: %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logging.New(cfg)

	// --- Store ---
	var repo repositories.UserRepository
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("Using in-memory user store; data is lost on restart")
		repo = repositories.NewMemoryUserRepository()
	} else {
		db, err := database.Open(cfg.Database, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize database")
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.WithError(err).Error("Error closing database")
			}
		}()
		repo = repositories.NewGORMUserRepository(db)
	}

	// --- Events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:    cfg.RabbitMQ.URL,
			Queues: []string{services.UserEventsQueue},
		}, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		events = mqClient

		if err := mqClient.Consume(services.UserEventsQueue, rabbitmq.AuditLogHandler(log)); err != nil {
			log.WithError(err).Error("Failed to start user event consumer")
		}
	}

	app, _ := NewApp(Dependencies{
		Repo:       repo,
		Config:     v,
		Events:     events,
		Log:        log,
		BcryptCost: cfg.Bcrypt.Cost,
	})

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.App.Port).Info("Starting server")
		if err := app.Listen(cfg.App.Port); err != nil {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.Info("Server gracefully stopped")
}
