package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/dkhromov/user-directory/internal/handlers"
	"github.com/dkhromov/user-directory/internal/logger"
	"github.com/dkhromov/user-directory/internal/middlewares"
	"github.com/dkhromov/user-directory/internal/repositories"
	"github.com/dkhromov/user-directory/internal/services"
	"github.com/dkhromov/user-directory/internal/storage"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title user-directory API
// @version 1.0.0
// @description Minimal user registration service over a managed key-value store
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		backend, awsRegion, dynamoEndpoint, usersTable, emailIndex,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns,
		kafkaBrokers, kafkaTopic, bcryptCost,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		backend, awsRegion, dynamoEndpoint, usersTable, emailIndex,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns,
		kafkaBrokers, kafkaTopic, bcryptCost,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, storage, Kafka and hashing configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	backend, awsRegion, dynamoEndpoint, usersTable, emailIndex string,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	kafkaBrokers, kafkaTopic string,
	bcryptCost int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// Storage config
	backend = getEnv("STORAGE_BACKEND", "dynamo")
	awsRegion = getEnv("AWS_REGION", "us-east-1")
	dynamoEndpoint = getEnv("DYNAMODB_ENDPOINT", "")
	usersTable = getEnv("USERS_TABLE", "users")
	emailIndex = getEnv("USERS_EMAIL_INDEX", "email-id-index")

	// Redis config (used when STORAGE_BACKEND=redis)
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if redisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if redisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}

	// Kafka config; an empty broker list disables event publishing
	kafkaBrokers = getEnv("KAFKA_BROKERS", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "user-events")

	// Hashing config
	if bcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return
	}

	return
}

// run initializes the logger, storage backend, Kafka writer and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	backend, awsRegion, dynamoEndpoint, usersTable, emailIndex string,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	kafkaBrokers, kafkaTopic string,
	bcryptCost int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Select storage backend
	var store storage.Store
	switch backend {
	case "dynamo":
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(awsRegion),
		}
		if dynamoEndpoint != "" {
			// Local endpoint (dynamodb-local); static throwaway credentials.
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("local", "local", ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			logger.Log.Errorw("failed to load AWS config", "error", err)
			return err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if dynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(dynamoEndpoint)
			}
		})
		store = storage.NewDynamoStore(client, "id")
		logger.Log.Infof("Using DynamoDB storage, table %s", usersTable)

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", redisHost, redisPort),
			Password:     redisPassword,
			DB:           redisDB,
			PoolSize:     redisPoolSize,
			MinIdleConns: redisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Errorw("Redis connection error", "error", err)
			return err
		}
		defer rdb.Close()
		store = storage.NewRedisStore(rdb, map[string][]string{
			usersTable: {"email"},
		})
		logger.Log.Infof("Using Redis storage at %s:%d", redisHost, redisPort)

	case "memory":
		store = storage.NewMemoryStore()
		logger.Log.Warn("Using in-memory storage, records will not survive restarts")

	default:
		return fmt.Errorf("unknown storage backend %q", backend)
	}

	// Kafka writer for lifecycle events (optional)
	var kafkaWriter services.KafkaWriter
	if kafkaBrokers != "" {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(strings.Split(kafkaBrokers, ",")...),
			Topic:                  kafkaTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infof("Publishing user events to Kafka topic %s", kafkaTopic)
	}

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(store, usersTable, emailIndex)
	userWriteRepo := repositories.NewUserWriteRepository(store, usersTable)

	// Initialize services
	userService := services.NewUserService(userReadRepo, userWriteRepo, kafkaWriter, bcryptCost)

	// Initialize handlers
	createUserHandler := handlers.NewCreateUserHandler(userService)
	getUserByEmailHandler := handlers.NewGetUserByEmailHandler(userService)
	getUserByIDHandler := handlers.NewGetUserByIDHandler(userService)
	updateUserHandler := handlers.NewUpdateUserHandler(userService)
	deleteUserHandler := handlers.NewDeleteUserHandler(userService)
	checkPasswordHandler := handlers.NewCheckPasswordHandler(userService)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.CORSMiddleware)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", createUserHandler)
		r.Get("/users", getUserByEmailHandler)
		r.Get("/users/{id}", getUserByIDHandler)
		r.Put("/users/{id}", updateUserHandler)
		r.Delete("/users/{id}", deleteUserHandler)
		r.Post("/users/verify", checkPasswordHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
