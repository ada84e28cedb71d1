package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/adapter/cache"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/adapter/handler"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/adapter/lock"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/adapter/messaging/kafka"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/adapter/repository/postgres"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/ports"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/services"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/platform/database"
)

func loadEnv(filepath string) {
	file, err := os.Open(filepath)

	if err != nil {
		log.Println("No .env file found, using OS environment variables.")
		return
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			os.Setenv(key, value)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Failed to read .env file: %v\n", err)
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	loadEnv(".env")

	dbConfig := database.Config{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "postgres"),
		Password: getenv("DB_PASSWORD", ""),
		DBName:   getenv("DB_NAME", "ticketing_platform"),
	}

	db, err := database.NewPostgresDB(dbConfig)

	if err != nil {
		log.Fatalf("Failed to connect to db after retries: %v", err)
	}

	defer db.Close()

	if err := database.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	redisHost := getenv("REDIS_HOST", "localhost")
	redisPort := getenv("REDIS_PORT", "6379")

	log.Printf("Connecting to Redis at %s:%s...", redisHost, redisPort)

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort),
		DB:   0,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected successfully!")

	var publisher ports.ReservationPublisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := getenv("KAFKA_TOPIC", "reservation-events")
		log.Printf("Publishing reservation events to Kafka topic %q via %s", topic, brokers)

		producer := kafka.NewProducer(strings.Split(brokers, ","), topic)
		defer producer.Close()
		publisher = producer
	}

	eventRepo := postgres.NewEventRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	eventLocker := lock.NewRedisLocker(redisClient)
	snapshotCache := cache.NewRedisCache(redisClient)

	ticketingService := services.NewTicketingService(eventRepo, reservationRepo, eventLocker, snapshotCache, publisher)

	ticketingHandler := handler.NewTicketingHandler(ticketingService)

	warmerCtx, stopWarmer := context.WithCancel(context.Background())
	defer stopWarmer()

	go func() {
		ticketingService.RunCacheWarmer(warmerCtx, 1*time.Minute)
	}()

	mux := http.NewServeMux()
	ticketingHandler.Register(mux)

	addr := ":" + getenv("PORT", "8080")

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")
	stopWarmer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
