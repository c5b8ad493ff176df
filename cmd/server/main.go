package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-service/config"
	"shop-service/internal/api"
	"shop-service/internal/broker"
	"shop-service/internal/notifier"
	"shop-service/internal/redisclient"
	"shop-service/internal/seed"
	"shop-service/internal/service"
	"shop-service/internal/storage"
	"shop-service/internal/store"
	"shop-service/internal/util"
	"shop-service/internal/worker"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting shop service", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer(cfg.Observ.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx := context.Background()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database schema up to date")
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	statsCache := redisclient.NewStatsCache(redisClient, time.Duration(cfg.Stats.CacheTTLSeconds)*time.Second)

	var publisher broker.Publisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		publisher = producer
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicEvents))
	}
	eventPublisher := broker.NewEventPublisher(publisher)

	files, uploadDir, err := newFileStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	catalog, err := seed.Default()
	if err != nil {
		logger.Fatal("Failed to load seed catalog", zap.Error(err))
	}

	catalogService := service.NewCatalogService(db, eventPublisher, statsCache)
	orderService := service.NewOrderService(db, eventPublisher, statsCache)
	statsService := service.NewStatsService(db, statsCache, cfg.Stats.RecentOrders)
	visitorService := service.NewVisitorService(db, redisClient, statsCache)
	userService := service.NewUserService(db)
	uploadService := service.NewUploadService(files)
	seedService := service.NewSeedService(db, catalogService, catalog)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var notificationWorker *worker.NotificationWorker
	if cfg.Notify.Enabled && cfg.Kafka.Enabled {
		notificationWorker, err = newNotificationWorker(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize notification worker", zap.Error(err))
		}
		go func() {
			if err := notificationWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Notification worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Services{
		Catalog:  catalogService,
		Orders:   orderService,
		Stats:    statsService,
		Visitors: visitorService,
		Users:    userService,
		Uploads:  uploadService,
		Seed:     seedService,
	}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		UploadDir:      uploadDir,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Readiness: map[string]api.Pinger{
			"database": db,
			"redis":    redisClient,
		},
	})
	if err := handler.SetupRoutes(router); err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if notificationWorker != nil {
		if err := notificationWorker.Stop(); err != nil {
			logger.Warn("Error stopping notification worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// newFileStore picks the upload backend. The returned dir is served under
// /uploads and is empty for remote backends.
func newFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, string, error) {
	switch cfg.Upload.Backend {
	case "s3":
		if cfg.Upload.S3Bucket == "" {
			return nil, "", fmt.Errorf("S3_BUCKET is required for the s3 upload backend")
		}
		awsCfg, err := util.LoadAWSConfig(ctx, cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
		if err != nil {
			return nil, "", err
		}
		client := s3.NewFromConfig(awsCfg)
		return storage.NewS3Store(client, cfg.Upload.S3Bucket, cfg.Upload.S3Prefix, cfg.AWS.Region, cfg.Upload.AssetsBaseURL), "", nil

	case "local", "":
		local, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return local, local.Dir(), nil

	default:
		return nil, "", fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}
}

func newNotificationWorker(ctx context.Context, cfg *config.Config) (*worker.NotificationWorker, error) {
	awsCfg, err := util.LoadAWSConfig(ctx, cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
	if err != nil {
		return nil, err
	}

	sender, err := notifier.NewEmailSender(ses.NewFromConfig(awsCfg), cfg.Notify.SenderEmail, cfg.Notify.ShopName)
	if err != nil {
		return nil, err
	}

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	return worker.NewNotificationWorker(consumer, sender), nil
}
