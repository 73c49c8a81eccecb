package main

import (
	"context"

	availabilityhandler "laluna/internal/availability/handler"
	availabilityservice "laluna/internal/availability/service"
	bookinghandler "laluna/internal/bookings/handler"
	bookingrepository "laluna/internal/bookings/repository"
	bookingservice "laluna/internal/bookings/service"
	bookingvalidator "laluna/internal/bookings/validator"
	"laluna/internal/events"
	"laluna/internal/health"
	roomhandler "laluna/internal/rooms/handler"
	roomrepository "laluna/internal/rooms/repository"
	roomservice "laluna/internal/rooms/service"
	roomvalidator "laluna/internal/rooms/validator"
	"laluna/pkg/app"
	"laluna/pkg/config"
	"laluna/pkg/contracts"
	"laluna/pkg/kafka"
	kafka_config "laluna/pkg/kafka/config"
	kafka_middleware "laluna/pkg/kafka/middleware"
	"laluna/pkg/lock"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting La Luna reservations service")

	cfg.SetMongo()

	serverApp := app.NewApplication(cfg)
	if cfg.TracingEnabled {
		shutdownTracer := app.InitTracer(ServiceName)
		serverApp.OnShutdown("tracer", shutdownTracer)
		cfg.Log.Info("Tracing enabled")
	}
	serverApp.OnShutdown("mongo", func(context.Context) error {
		cfg.GracefulShutdown()
		return nil
	})

	publisher := initPublisher(cfg)
	serverApp.OnShutdown("events", func(context.Context) error {
		return publisher.Close()
	})

	handlers := initHandlers(cfg, publisher)
	serverApp.SetApp(health.NewHealthHandler(cfg.Client.Mongo, cfg), handlers...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	roomRepo := roomrepository.NewMongoRoomRepository(cfg)
	roomService := roomservice.NewRoomService(roomRepo, roomvalidator.NewRoomValidator(cfg.Log), cfg)

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		roomService,
		initGuard(cfg),
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	availabilityService := availabilityservice.NewAvailabilityService(roomService, bookingService, cfg)

	cfg.Log.Info("Reservation services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		roomhandler.NewRoomHandler(roomService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
	}
}

// initGuard always serializes in process; the mongo backend adds the shared
// Room_locks guard for multi-instance deployments.
func initGuard(cfg *config.Config) lock.Guard {
	local := lock.NewLocalGuard()
	if cfg.LockBackend != config.LockBackendMongo {
		cfg.Log.Info("Room lock backend configured", "backend", config.LockBackendLocal)
		return local
	}

	store := bookingrepository.NewRoomLockRepository(cfg)
	storeGuard := lock.NewStoreGuard(store, lock.StoreConfig{
		TTL:           cfg.LockTTL,
		WaitTimeout:   cfg.LockWaitTimeout,
		RetryInterval: cfg.LockRetryInterval,
	}, cfg.Log)

	cfg.Log.Info("Room lock backend configured", "backend", config.LockBackendMongo, "ttl", cfg.LockTTL)
	return lock.Chain(local, storeGuard)
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(kafka_middleware.NewMetrics()))
	}

	cfg.Log.Info("Booking events enabled", "topic", cfg.EventsTopic, "dlq_topic", cfg.EventsDLQTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
