package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MAKAMOUL/prophoneplus/internal/cache"
	"github.com/MAKAMOUL/prophoneplus/internal/config"
	"github.com/MAKAMOUL/prophoneplus/internal/handler"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
	"github.com/MAKAMOUL/prophoneplus/internal/router"
	"github.com/MAKAMOUL/prophoneplus/internal/service"
	syncpkg "github.com/MAKAMOUL/prophoneplus/internal/sync"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ProPhonePlus sync server...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize local store
	store, err := repository.Open(cfg.LocalDB.Path)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer store.Close()
	log.Printf("Local store opened at %s", cfg.LocalDB.Path)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ReadTimeout)
	if err := store.SeedDefaults(ctx); err != nil {
		log.Printf("Warning: seeding default categories failed: %v", err)
	}
	cancel()

	// Initialize remote store based on config. Construction only fails on a
	// malformed DSN; an unreachable remote still yields a working adapter
	// whose cycles fail, so the engine reports offline and retries until
	// connectivity returns.
	var remote repository.Remote
	switch cfg.RemoteDB.Type {
	case "postgres", "postgresql":
		pgRemote, err := repository.NewPostgresRemote(cfg.RemoteDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL remote: %v", err)
		}
		defer pgRemote.Close()
		remote = pgRemote
		log.Println("PostgreSQL remote store initialized")
	case "mysql":
		myRemote, err := repository.NewMySQLRemote(cfg.RemoteDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL remote: %v", err)
		}
		defer myRemote.Close()
		remote = myRemote
		log.Println("MySQL remote store initialized")
	default:
		log.Println("No remote store configured, running in local-only mode")
	}

	// Initialize snapshot cache
	var snapshotCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, falling back to memory: %v", err)
			snapshotCache = cache.NewMemoryCache()
		} else {
			snapshotCache = redisCache
			log.Println("Redis cache initialized")
		}
	default:
		snapshotCache = cache.NewMemoryCache()
		log.Println("In-memory cache initialized")
	}
	defer snapshotCache.Close()

	// Initialize sync engine and services
	broker := syncpkg.NewBroker()
	engine := syncpkg.NewEngine(store, remote, broker)

	alertService := service.NewAlertService(store)
	snapshotService := service.NewSnapshotService(store, alertService, snapshotCache, cfg.Cache.TTL)
	inventoryService := service.NewInventoryService(store, engine)
	userService := service.NewUserService(store)

	// The periodic cycle refreshes the observable view after every run so
	// pulled records and recomputed alerts become visible without a mutation.
	scheduler := syncpkg.NewScheduler(engine, func(ctx context.Context) {
		if _, err := snapshotService.RefreshAllData(ctx); err != nil {
			log.Printf("[Scheduler] Snapshot refresh after sync failed: %v", err)
		}
	}, syncpkg.SchedulerConfig{
		Interval:     cfg.Sync.Interval,
		CycleTimeout: cfg.Sync.CycleTimeout,
	})
	scheduler.Start()

	// Initialize handlers
	healthHandler := handler.New(store, cfg.App.Version)
	dataHandler := handler.NewDataHandler(snapshotService)
	productHandler := handler.NewProductHandler(inventoryService, snapshotService)
	categoryHandler := handler.NewCategoryHandler(inventoryService, snapshotService)
	saleHandler := handler.NewSaleHandler(inventoryService, snapshotService)
	alertHandler := handler.NewAlertHandler(alertService, snapshotService)
	userHandler := handler.NewUserHandler(userService)
	syncHandler := handler.NewSyncHandler(engine, scheduler, broker, store)

	// Create router
	r := router.New(router.Config{
		Handler:         healthHandler,
		DataHandler:     dataHandler,
		ProductHandler:  productHandler,
		CategoryHandler: categoryHandler,
		SaleHandler:     saleHandler,
		AlertHandler:    alertHandler,
		UserHandler:     userHandler,
		SyncHandler:     syncHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop the scheduler first so no cycle starts mid-shutdown
	scheduler.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
