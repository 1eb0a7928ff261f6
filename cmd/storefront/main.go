package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fjod/go_restaurant/internal/auth"
	"github.com/fjod/go_restaurant/internal/cache"
	"github.com/fjod/go_restaurant/internal/cart"
	"github.com/fjod/go_restaurant/internal/checkout"
	"github.com/fjod/go_restaurant/internal/clients"
	"github.com/fjod/go_restaurant/internal/commit"
	"github.com/fjod/go_restaurant/internal/config"
	h "github.com/fjod/go_restaurant/internal/http"
	"github.com/fjod/go_restaurant/internal/payment"
	"github.com/fjod/go_restaurant/internal/publisher"
	"github.com/fjod/go_restaurant/internal/repository"
	"github.com/fjod/go_restaurant/internal/storefront"
	"github.com/fjod/go_restaurant/pkg/circuitbreaker"
	"github.com/fjod/go_restaurant/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	bootLog := logger.New("info", "text")
	cfg := config.Load(bootLog)
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("storefront starting...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Postgres: checkout sessions and the outbox
	port, err := strconv.Atoi(cfg.DBPort)
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}
	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              port,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()
	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	// Mongo: saved carts
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() { _ = mongoDB.Client().Disconnect(context.Background()) }()
	carts := repository.NewCartRepository(mongoDB)
	if err := carts.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	log.WithField("uri", cfg.MongoURI).Info("Connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Info("Redis ping succeeded")

	// upstream collaborators
	client := clients.New(clients.Options{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.RequestTimeout,
		Breaker: circuitbreaker.Config{
			ConsecutiveFailures: cfg.BreakerFailures,
			Cooldown:            cfg.BreakerCooldown,
		},
	}, log)
	catalog := clients.NewCatalog(client)
	orders := clients.NewOrders(client)
	reservations := clients.NewReservations(client)
	resources := clients.NewResources(orders, reservations)

	var remoteCart commit.RemoteCart = clients.NewRemoteCart(client)
	if cfg.CartReplaceSupported {
		remoteCart = clients.NewReplacingRemoteCart(client)
	}
	transition := commit.NewTransition(remoteCart, reservations, commit.Options{
		ClearAttempts: cfg.ClearAttempts,
		ClearBackoff:  commit.DefaultOptions().ClearBackoff,
		Location:      cfg.Location,
	}, log)
	orchestrator := payment.NewOrchestrator(clients.NewPayments(client), cfg.RequestTimeout, log)

	service := storefront.NewService(storefront.Deps{
		Catalog:      catalog,
		Orders:       orders,
		Reservations: reservations,
		Carts:        carts,
		Cache:        cache.NewRedisCache(redisClient),
		Pricing:      cfg.Pricing,
		Location:     cfg.Location,
		NewMachine: func(userID string, store *cart.Store) *checkout.Machine {
			return checkout.NewMachine(userID, store, transition, orchestrator, resources, repo, log)
		},
	}, log)

	poller, sink := newOutboxPoller(cfg, repo, log)
	if poller != nil {
		defer sink.Close()
		go poller.Run(ctx)
		log.WithField("sink", cfg.EventSink).Info("Outbox poller started")
	}

	// HTTP API
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is empty; every request will be rejected")
	}
	router := h.NewRouter(h.RouterConfig{
		Cart:           h.NewCartHandler(service, cfg.RequestTimeout, log),
		Checkout:       h.NewCheckoutHandler(service, cfg.RequestTimeout, log),
		Bookings:       h.NewBookingsHandler(service, cfg.RequestTimeout, log),
		Verifier:       auth.NewVerifier(cfg.JWTSecretKey),
		SignInURL:      cfg.SignInURL,
		RequestTimeout: cfg.RequestTimeout,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Infof("HTTP API listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// gRPC health for the orchestrator probes
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	go func() {
		log.Infof("gRPC health listening on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront...")
	healthServer.Shutdown()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	log.Info("storefront stopped")
}

func newOutboxPoller(cfg *config.Config, repo *repository.Repository, log logrus.FieldLogger) (*publisher.OutboxPoller, publisher.Sink) {
	var sink publisher.Sink
	switch cfg.EventSink {
	case "kafka":
		sink = publisher.NewKafkaSink(cfg.KafkaBrokers...)
	case "nats":
		natsSink, err := publisher.NewNATSSink(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		sink = natsSink
	case "none":
		return nil, nil
	default:
		log.Fatalf("Unknown EVENT_SINK %q", cfg.EventSink)
	}
	return publisher.NewOutboxPoller(repo, sink, cfg.OutboxPoll, log), sink
}
