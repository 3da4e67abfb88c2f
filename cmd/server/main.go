package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcAdapter "github.com/Dhee091/Housing-Management-sub000/internal/adapter/grpc"
	natsAdapter "github.com/Dhee091/Housing-Management-sub000/internal/adapter/messaging/nats"
	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/repository/cache"
	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/repository/memory"
	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/repository/mongodb"
	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/rest"
	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/storage/s3"
	"github.com/Dhee091/Housing-Management-sub000/internal/config"
	"github.com/Dhee091/Housing-Management-sub000/internal/identity"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/backend"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/query"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/usecase"
	"github.com/Dhee091/Housing-Management-sub000/internal/mailer"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/metrics"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// stores are the identity stores chosen alongside the listing backend.
type stores struct {
	users    identity.UserRepository
	sessions identity.SessionStore
	closers  []func(context.Context)
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.ServiceName),
		zap.String("listing_backend", cfg.ListingBackend))

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)
	options := []usecase.Option{usecase.WithMetrics(metricsManager)}

	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		options = append(options, usecase.WithEventPublisher(publisher))
	} else {
		appLogger.Info("NATS publisher disabled: NATS_URL is not set.")
	}

	if cfg.SMTPHost != "" {
		options = append(options, usecase.WithNotifier(mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.SMTPSender,
		}, appLogger)))
	} else {
		appLogger.Info("Mail notifications disabled: SMTP_HOST is not set.")
	}

	ucOpts := usecase.Options{
		Query:            query.Options{DefaultPageSize: cfg.DefaultPageSize, MaxPageSize: cfg.MaxPageSize},
		StrictValidation: cfg.StrictValidation,
		MaxImageBytes:    cfg.MaxUploadBytes,
	}

	var st stores
	kind, err := backend.ParseKind(cfg.ListingBackend)
	if err != nil {
		appLogger.Fatal("Invalid listing backend", zap.Error(err))
	}
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	listingUsecase, err := backend.Initialize(startupCtx, kind, backend.Builders{
		backend.KindMock: func(context.Context) (*usecase.ListingUsecase, error) {
			st.users, st.sessions = memory.NewUserRepository(), memory.NewSessionStore()
			return usecase.NewListingUsecase(memory.NewListingRepository(), memory.NewBlobStore(""), appLogger, ucOpts, options...), nil
		},
		backend.KindRemoteStore: func(ctx context.Context) (*usecase.ListingUsecase, error) {
			return buildRemote(ctx, cfg, appLogger, &st, ucOpts, options)
		},
	})
	cancelStartup()
	if err != nil {
		appLogger.Fatal("Failed to initialize listing backend", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(st.closers) - 1; i >= 0; i-- {
			st.closers[i](ctx)
		}
	}()
	appLogger.Info("Listing backend initialized.", zap.String("kind", string(backend.Active())))

	identityService := identity.NewService(st.users, st.sessions, identity.Config{
		Secret:     cfg.JWTSecret,
		TTL:        cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	}, appLogger)
	if cfg.AdminEmail != "" {
		if err := identityService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			appLogger.Fatal("Failed to provision admin account", zap.Error(err))
		}
	}

	httpServer := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: rest.NewRouter(rest.RouterConfig{
			Listings:       listingUsecase,
			Auth:           identityService,
			Observer:       metricsManager,
			Logger:         appLogger,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	grpcServer := grpcAdapter.NewServer(appLogger)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server Serve error", zap.Error(err))
		}
	}()

	metricsServer := metrics.NewMetricsServer(cfg.PrometheusMetricsPort, metricsManager.Registry)
	go func() {
		if err := metrics.StartMetricsServer(metricsServer, appLogger); err != nil {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	grpcServer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Metrics server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shutting down...")
}

// buildRemote wires MongoDB for listings and users, Redis for the listing
// cache and sessions, and MinIO for image blobs.
func buildRemote(ctx context.Context, cfg *config.Config, appLogger *logger.Logger, st *stores, opts usecase.Options, options []usecase.Option) (*usecase.ListingUsecase, error) {
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	st.closers = append(st.closers, func(ctx context.Context) {
		if err := mongoClient.Disconnect(ctx); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	})
	db := mongoClient.Database(cfg.MongoDatabase)

	listingRepo, err := mongodb.NewListingRepository(ctx, db, appLogger)
	if err != nil {
		return nil, err
	}
	userRepo, err := mongodb.NewUserRepository(ctx, db, appLogger)
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	st.closers = append(st.closers, func(context.Context) {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Error closing Redis client", zap.Error(err))
		}
	})

	blobs, err := s3.NewBlobStore(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		return nil, err
	}

	st.users = userRepo
	st.sessions = cache.NewSessionStore(redisClient)
	repo := cache.NewCachedListingRepository(listingRepo, cache.NewListingCache(redisClient, cfg.ListingCacheTTL), appLogger)
	return usecase.NewListingUsecase(repo, blobs, appLogger, remoteOptions(opts), options...), nil
}

// remoteOptions adjusts the shared options for the remote-store backend,
// whose image blobs outlive the listing unless purged on delete.
func remoteOptions(opts usecase.Options) usecase.Options {
	opts.PurgeImagesOnDelete = true
	return opts
}
