package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/assistant"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/auth"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/cache"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/clickhouse"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/config"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/dal"
	grpcserver "github.com/Billy-Davies-2/fbb-draft-assistant/internal/grpc"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/handlers"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/mcptools"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/mocks"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/pubsub"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/reconcile"
)

// eventBus is the upstream transport behind the local PubSub
type eventBus interface {
	pubsub.Upstream
	Close()
}

func main() {
	// Initialize logger first
	logger.Init()

	logger.Info("Starting fantasy baseball draft assistant")

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(cfg)
	defer store.Close()

	if cfg.PlayersFile != "" {
		players, err := dal.LoadPlayersFile(cfg.PlayersFile)
		if err != nil {
			log.Fatalf("Failed to load players file: %v", err)
		}
		if err := store.UpsertPlayers(ctx, players); err != nil {
			log.Fatalf("Failed to store players: %v", err)
		}
		logger.Info("Loaded players file", "file", cfg.PlayersFile, "players", len(players))
	}

	bus := openEventBus(cfg)
	defer bus.Close()
	ps := pubsub.NewWithUpstream(bus)
	defer ps.Close()

	checks := []handlers.Check{{Name: "database", Pinger: store, Critical: true}}

	var riskCache cache.RiskCache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.RiskCacheTTL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		riskCache = rc
		checks = append(checks, handlers.Check{Name: "redis", Pinger: rc})
		logger.Info("Using Redis risk cache", "ttl", cfg.RiskCacheTTL.String())
	} else {
		riskCache = cache.NewMemoryCache(cfg.RiskCacheTTL)
		logger.Info("Using in-memory risk cache", "ttl", cfg.RiskCacheTTL.String())
	}
	defer riskCache.Close()

	if nb, ok := bus.(interface{ Connected() bool }); ok {
		checks = append(checks, handlers.Check{Name: "nats", Pinger: handlers.PingFunc(func(context.Context) error {
			if !nb.Connected() {
				return errors.New("not connected")
			}
			return nil
		})})
	}

	var tuning *config.Tuning
	if cfg.TuningFile != "" {
		t, err := config.LoadTuning(cfg.TuningFile)
		if err != nil {
			log.Fatalf("Failed to load tuning file: %v", err)
		}
		tuning = &t
	}

	svc := assistant.New(assistant.Options{
		Store:  store,
		Events: ps,
		Cache:  riskCache,
		Tuning: tuning,
		Seed:   cfg.PredictorSeed,
	})
	restored, err := svc.Restore(ctx)
	if err != nil {
		logger.Error("Failed to restore sessions", "error", err)
		log.Fatalf("Failed to restore sessions: %v", err)
	}
	logger.Info("Sessions restored", "count", restored)

	if cfg.TuningFile != "" {
		go func() {
			err := config.WatchTuning(ctx, cfg.TuningFile, func(t config.Tuning) {
				if err := svc.SetTuning(t); err != nil {
					logger.Warn("Rejected tuning", "error", err)
				}
			})
			if err != nil {
				logger.Error("Tuning watcher stopped", "error", err)
			}
		}()
	}

	// ADP sync from ClickHouse (or mock market data in development)
	adp := openADPSource(ctx, cfg, store)
	defer adp.Close()
	if ch, ok := adp.(*clickhouse.Client); ok {
		checks = append(checks, handlers.Check{Name: "clickhouse", Pinger: ch})
	}
	go func() {
		ticker := time.NewTicker(cfg.ADPSyncInterval)
		defer ticker.Stop()

		// Initial sync
		syncADP(ctx, svc, adp)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				syncADP(ctx, svc, adp)
			}
		}
	}()

	if cfg.LeagueFeed.URL != "" {
		feed, err := reconcile.NewHTTPFeed(reconcile.FeedOptions{
			BaseURL:           cfg.LeagueFeed.URL,
			ClientID:          cfg.LeagueFeed.ClientID,
			ClientSecret:      cfg.LeagueFeed.ClientSecret,
			TokenURL:          cfg.LeagueFeed.TokenURL,
			RequestsPerSecond: cfg.LeagueFeed.RequestsPerSecond,
		})
		if err != nil {
			log.Fatalf("Failed to configure league feed: %v", err)
		}
		go reconcile.NewPoller(feed, svc, cfg.LeagueFeed.LeagueID, cfg.LeagueFeed.Interval).Run(ctx)
	} else {
		logger.Info("Skipping league reconciliation (LEAGUE_FEED_URL not set)")
	}

	// Use mock auth in development mode, Authentik OAuth2 in production
	var authProvider auth.Provider
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		authProvider = auth.NewMockAuth()
	} else {
		if cfg.Authentik.BaseURL == "" || cfg.Authentik.ClientID == "" || cfg.Authentik.ClientSecret == "" {
			logger.Error("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
			log.Fatal("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
		}
		authProvider = auth.NewAuthentikAuth(auth.AuthentikConfig{
			BaseURL:      cfg.Authentik.BaseURL,
			ClientID:     cfg.Authentik.ClientID,
			ClientSecret: cfg.Authentik.ClientSecret,
			RedirectURL:  cfg.Authentik.RedirectURL,
		})
		logger.Info("Connected to Authentik", "url", cfg.Authentik.BaseURL)
	}

	// Start gRPC server in a goroutine
	grpcServer := grpc.NewServer()
	grpcserver.RegisterDraftAssistantServer(grpcServer, grpcserver.NewServer(svc))
	go func() {
		lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
		if err != nil {
			logger.Error("Failed to listen for gRPC", "error", err, "port", cfg.GRPCPort)
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		logger.Info("gRPC server starting", "address", "0.0.0.0:"+cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	router := handlers.NewRouter(handlers.RouterOptions{
		API:         handlers.NewAPIHandlers(svc, ps),
		Health:      handlers.NewHealth(checks...),
		Auth:        authProvider,
		CORSOrigins: cfg.CORSOrigins,
		MCP:         mcptools.Handler(svc),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
}

// openStore selects the data store from DB_DRIVER
func openStore(cfg *config.Config) dal.Store {
	switch cfg.DBDriver {
	case "memory":
		logger.Info("Using in-memory data store")
		return dal.NewMemoryDAL()
	case "sqlite":
		store, err := dal.NewSQLiteDAL(cfg.SQLiteFile, cfg.AutoMigrate)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
		return store
	case "postgres":
		if cfg.DatabaseURL == "" {
			if cfg.IsDevelopment() {
				store, err := mocks.NewMockPostgresDAL(cfg.SQLiteFile)
				if err != nil {
					log.Fatalf("Failed to initialize mock Postgres: %v", err)
				}
				return store
			}
			logger.Error("DATABASE_URL environment variable is required for postgres driver")
			log.Fatal("DATABASE_URL environment variable is required for postgres driver")
		}
		store, err := dal.NewPostgresDAL(cfg.DatabaseURL, cfg.AutoMigrate)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
		return store
	default:
		logger.Error("Unknown DB_DRIVER", "driver", cfg.DBDriver)
		log.Fatalf("Unknown DB_DRIVER: %s (valid: memory, sqlite, postgres)", cfg.DBDriver)
	}
	return nil
}

// openEventBus uses embedded NATS in development, real NATS in production,
// and an in-process bus when NATS_URL is "none"
func openEventBus(cfg *config.Config) eventBus {
	if cfg.NATSURL == "none" {
		logger.Info("NATS disabled, using in-process event bus")
		return pubsub.NewMemoryBus(0)
	}

	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
		return embedded
	}

	logger.Info("Using real NATS JetStream for production")
	bus, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		logger.Error("Failed to initialize NATS", "error", err)
		log.Fatalf("Failed to initialize NATS: %v", err)
	}
	logger.Info("Connected to NATS", "url", cfg.NATSURL)
	return bus
}

// openADPSource returns ClickHouse in production and generated market data in development
func openADPSource(ctx context.Context, cfg *config.Config, store dal.Store) clickhouse.ADPSource {
	if cfg.IsDevelopment() {
		logger.Info("Using mock ClickHouse for local development (no ClickHouse server required)")
		players, err := store.ListPlayers(ctx)
		if err != nil {
			log.Fatalf("Failed to list players for mock ADP: %v", err)
		}
		return mocks.NewMockADPSource(players, cfg.PredictorSeed)
	}

	ch, err := clickhouse.NewClient(cfg.ClickHouse.Addr, cfg.ClickHouse.Database, cfg.ClickHouse.User, cfg.ClickHouse.Password)
	if err != nil {
		logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouse.Addr)
		log.Fatalf("Failed to initialize ClickHouse: %v", err)
	}
	logger.Info("Connected to ClickHouse", "address", cfg.ClickHouse.Addr, "database", cfg.ClickHouse.Database)
	return ch
}

func syncADP(ctx context.Context, svc *assistant.Service, src clickhouse.ADPSource) {
	logger.Info("Syncing ADP from market data")
	n, err := svc.SyncADP(ctx, src)
	if err != nil {
		logger.Error("Failed to sync ADP", "error", err)
		return
	}
	logger.Info("ADP synced", "players", n)
}
