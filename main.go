package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pricewatch/jofogasworker/config"
	"pricewatch/jofogasworker/helpers"
	"pricewatch/jofogasworker/internal/scraper"
	"pricewatch/jofogasworker/logger"
	apperr "pricewatch/jofogasworker/pkg/errors"
	"pricewatch/jofogasworker/services/cache"
	"pricewatch/jofogasworker/services/locker"
	"pricewatch/jofogasworker/services/publisher"
	"pricewatch/jofogasworker/services/reconcile"
	"pricewatch/jofogasworker/services/search"
	"pricewatch/jofogasworker/services/store"
	"pricewatch/jofogasworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("site", cfg.SiteBaseURL).
		Int("max_pages", cfg.MaxPages).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Start HTTP API
	mux := http.NewServeMux()
	mux.HandleFunc("GET /scrape", scrapeHandler(services.Search))
	mux.HandleFunc("GET /products", productsHandler(services.Search))

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Starting HTTP API")
		serverDone <- server.ListenAndServe()
	}()

	// Start the keyword watcher when keywords are configured
	workerDone := make(chan error, 1)
	if len(cfg.WatchKeywords) > 0 {
		w := worker.NewWorker(ctx, services.Search, cfg.WatchKeywords, cfg.WatchInterval)
		go func() {
			workerDone <- w.Start()
		}()
	}

	// Wait for shutdown signal or component error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	case err := <-workerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Worker exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	server.Shutdown(context.Background())
}

// Services holds all the initialized services
type Services struct {
	Store     store.Store
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Locker    locker.Locker
	Search    *search.Service
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Locker != nil {
		s.Locker.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize the store
	pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	services.Store = pgStore

	// Initialize cache service
	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher and locker
	services.Publisher = publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	services.Locker = locker.NewRedisLocker(cfg.RedisAddr, cfg.RedisDB)
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	// Initialize the scraper and search service
	sc, err := scraper.NewScraper(cfg.SiteBaseURL, cfg.MaxPages, helpers.FetchConfig{
		Timeout:  cfg.FetchTimeout,
		ProxyURL: cfg.ProxyURL,
	})
	if err != nil {
		return nil, err
	}

	reconciler := reconcile.NewReconciler(services.Store, services.Publisher)
	services.Search = search.NewService(sc, reconciler, services.Store, services.Cache, services.Locker, cfg.KeywordBlock)

	return services, nil
}

// scrapeResponse is the JSON payload of a scrape call
type scrapeResponse struct {
	Records []scraper.Listing `json:"records"`
	Note    string            `json:"note,omitempty"`
}

func scrapeHandler(svc *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, note, err := svc.Scrape(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, scrapeResponse{Records: records, Note: note})
	}
}

func productsHandler(svc *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.QueryByTitle(r.Context(), r.URL.Query().Get("filter"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, rows)
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.LogError("api", err, "failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var scrapeErr *apperr.ScrapeError
	if errors.As(err, &scrapeErr) {
		switch scrapeErr.Type {
		case apperr.ErrorTypeValidation:
			status = http.StatusBadRequest
		case apperr.ErrorTypeRateLimit:
			status = http.StatusTooManyRequests
		case apperr.ErrorTypeFetch:
			status = http.StatusBadGateway
		case apperr.ErrorTypePersistence:
			status = http.StatusServiceUnavailable
		}
	}

	logger.LogError("api", err, "request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
