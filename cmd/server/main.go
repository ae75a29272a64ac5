// main wires configuration, backends, services, and the HTTP router, then
// supervises the server and the audit pipeline until shutdown. Business
// logic lives in the internal service packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	authHandler "roost/internal/auth/handler"
	authService "roost/internal/auth/service"
	sessionStore "roost/internal/auth/store/session"
	userStore "roost/internal/auth/store/user"
	"roost/internal/auth/token"
	"roost/internal/geocode"
	listingHandler "roost/internal/listing/handler"
	listingMetrics "roost/internal/listing/metrics"
	listingService "roost/internal/listing/service"
	listingStore "roost/internal/listing/store"
	"roost/internal/media/minio"
	"roost/internal/notify"
	"roost/internal/platform/config"
	"roost/internal/platform/httpserver"
	"roost/internal/platform/logger"
	"roost/internal/platform/metrics"
	"roost/internal/platform/middleware"
	"roost/internal/platform/mongo"
	"roost/internal/platform/redis"
	"roost/internal/transport/http/shared"
	audit "roost/pkg/platform/audit"
	auditConsumer "roost/pkg/platform/audit/consumer"
	auditPublisher "roost/pkg/platform/audit/publisher"
	auditPostgres "roost/pkg/platform/audit/store/postgres"
	auditWorker "roost/pkg/platform/audit/worker"
)

func main() {
	// Missing .env is fine; the environment may be fully set already.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.New(startCtx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Close(closeCtx)
	}()

	redisClient, err := redis.New(startCtx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	storage, err := minio.New(startCtx, cfg.MinIO, log)
	if err != nil {
		return err
	}

	publisher, err := auditPublisher.NewKafkaPublisher(startCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Audit pipeline: services emit into a bounded inbox, the worker ships
	// events to Kafka, and the consumer archives them when a DSN is set.
	emitter := audit.NewEmitter(1024, log)
	worker := auditWorker.New(publisher, emitter.Inbox(), log)

	var consumer *auditConsumer.Consumer
	if cfg.AuditDB.DSN != "" {
		db, err := sql.Open("postgres", cfg.AuditDB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(startCtx); err != nil {
			return err
		}
		consumer, err = auditConsumer.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, auditPostgres.New(db), log)
		if err != nil {
			return err
		}
	}

	geoMetrics := geocode.NewMetrics()
	var geocoder geocode.Geocoder = geocode.NewClient(cfg.Geocoder, log, geoMetrics)
	geocoder = geocode.NewCachedGeocoder(geocoder, redisClient.Client, cfg.Geocoder.CacheTTL, log, geoMetrics)

	sessions := sessionStore.NewRedisSessionStore(redisClient.Client)
	tokens := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.TokenTTL)
	identity := authService.New(
		userStore.NewMongoStore(mongoClient.Database()),
		sessions,
		tokens,
		emitter,
		log,
		cfg.Auth.SessionTTL,
	)

	notices := notify.NewService(notify.NewRedisStore(redisClient.Client, 24*time.Hour), log)

	listings := listingService.New(
		listingStore.NewMongoStore(mongoClient.Database()),
		storage,
		geocoder,
		identity,
		notices,
		emitter,
		log,
		listingMetrics.New(),
		listingService.ParseGeocodePolicy(cfg.Geocoder.OnUpdate),
	)

	httpMetrics := metrics.New()
	router := newRouter(log, httpMetrics, mongoClient, redisClient,
		listingHandler.New(listings, tokens, sessions, cfg.Auth.LoginURL, log),
		authHandler.New(identity, notices, tokens, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	if consumer != nil {
		group.Go(func() error {
			return consumer.Run(groupCtx)
		})
	}
	group.Go(func() error {
		log.Info("starting roost server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newRouter(
	log *slog.Logger,
	m *metrics.Metrics,
	mongoClient *mongo.Client,
	redisClient *redis.Client,
	listings *listingHandler.Handler,
	identity *authHandler.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log, m))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(log))

	// Mutations set their own upload-sized timeout inside the listing handler.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Latency(m, "/listings"))
		listings.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.Latency(m, "/auth"))
		identity.Register(r)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		checkCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := mongoClient.Health(checkCtx); err != nil {
			shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "mongo": err.Error()})
			return
		}
		if err := redisClient.Health(checkCtx); err != nil {
			shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": err.Error()})
			return
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}
