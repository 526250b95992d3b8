package main

import (
	"os"

	"hopper/internal/allowlist"
	"hopper/internal/bookings/events"
	"hopper/internal/bookings/handler"
	"hopper/internal/bookings/repository"
	"hopper/internal/bookings/service"
	"hopper/internal/bookings/validator"
	contractsrepo "hopper/internal/contracts/repository"
	creditsrepo "hopper/internal/credits/repository"
	creditsservice "hopper/internal/credits/service"
	resourcesrepo "hopper/internal/resources/repository"
	resourcesservice "hopper/internal/resources/service"
	resourcesvalidator "hopper/internal/resources/validator"
	"hopper/pkg/app"
	"hopper/pkg/config"
	"hopper/pkg/kafka"
	kafka_config "hopper/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	bookingService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)

	resourceService := resourcesservice.NewResourceService(
		resourcesrepo.NewMongoResourceRepository(cfg),
		resourcesrepo.NewMongoSiteRepository(cfg),
		resourcesvalidator.NewResourceValidator(cfg.Log),
		cfg,
	)
	creditService := creditsservice.NewCreditService(creditsrepo.NewMongoCreditRepository(cfg), cfg)

	accessPolicy := allowlist.NewUserPolicy(
		contractsrepo.NewMongoUserRepository(cfg),
		allowlist.NewService(allowlist.NewRedisCache(cfg.Client.Redis), allowlist.NewHTTPFetcher(), cfg),
	)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		resourceService,
		creditService,
		accessPolicy,
		initEventPublisher(cfg),
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func initEventPublisher(cfg *config.Config) *events.Publisher {
	topic := os.Getenv("KAFKA_BOOKINGS_TOPIC")
	if topic == "" {
		topic = "hopper.bookings"
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), topic, topic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}

	cfg.Log.Info("Booking event publisher initialized", "topic", topic)
	return events.NewPublisher(producer)
}
