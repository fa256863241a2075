package main

import (
	"gigstage/internal/gigs/events"
	"gigstage/internal/gigs/handler"
	"gigstage/internal/gigs/repository"
	"gigstage/internal/gigs/service"
	"gigstage/internal/gigs/validator"
	"gigstage/internal/ocr"
	"gigstage/pkg/app"
	"gigstage/pkg/client"
	"gigstage/pkg/config"
)

const ServiceName = "gigs"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown(cfg.Log)

	cfg.Log.Info("Starting Gigs service")

	gigService, publisher := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewGigHandler(gigService, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config) (*service.GigService, events.Publisher) {
	gigRepo := repository.NewMongoGigRepository(cfg)
	ledgerRepo := repository.NewMongoLedgerRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)

	identity := client.NewIdentityClient(cfg.IdentityServiceURL)

	var recognizer ocr.Recognizer = ocr.Disabled{}
	if cfg.OCRServiceURL != "" {
		recognizer = ocr.NewHTTPRecognizer(cfg.OCRServiceURL)
		cfg.Log.Info("OCR recognizer enabled", "url", cfg.OCRServiceURL)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.GigEventsTopic != "" {
		p, err := events.NewKafkaPublisher(cfg.GigEventsTopic, cfg.GigEventsDLQTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
		}
		publisher = p
		cfg.Log.Info("Event publisher enabled", "topic", cfg.GigEventsTopic)
	}

	gigValidator := validator.NewGigValidator(cfg.Log)

	gigService := service.NewGigService(
		gigRepo,
		ledgerRepo,
		lockRepo,
		identity,
		recognizer,
		publisher,
		gigValidator,
		cfg,
	)

	cfg.Log.Info("Gig service initialized", "database", cfg.MongoDatabaseName)
	return gigService, publisher
}
