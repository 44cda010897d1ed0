package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"coinwatch/config"
	"coinwatch/currency"
	"coinwatch/database"
	"coinwatch/extractor"
	"coinwatch/fetcher"
	"coinwatch/handlers"
	"coinwatch/middleware"
	"coinwatch/reconciler"
	"coinwatch/repository"
	"coinwatch/scheduler"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if err := database.InitDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	repo := repository.NewProductRepository()

	browserFetcher, err := fetcher.NewBrowserFetcher()
	if err != nil {
		log.Fatalf("Failed to launch browser: %v", err)
	}
	defer browserFetcher.Close()

	fetchers := map[string]fetcher.PageFetcher{
		fetcher.BackendBrowser: browserFetcher,
		fetcher.BackendStatic:  fetcher.NewStaticFetcher(cfg.FetchTimeout),
	}

	registry := extractor.DefaultRegistry()
	normalizer := currency.NewNormalizer(cfg.HomeCurrency, cfg.Rates, cfg.RatesAPIURL, cfg.RatesTTL)

	comparer := reconciler.New(registry, fetchers, normalizer, reconciler.Config{
		SiteDelay:    cfg.SiteDelay,
		FetchTimeout: cfg.FetchTimeout,
	})

	driver := scheduler.NewDriver(repo, comparer, cfg.ProductDelay, cfg.HomeCurrency)

	sched := scheduler.NewScheduler(driver)
	if err := sched.Start(cfg.UpdateSchedule); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	h := handlers.NewHandlers(repo, driver, sched)

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RequestsPerSecond))

	r.HandleFunc("/health", healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", h.GetProducts).Methods("GET")
	api.HandleFunc("/products/{key}", h.GetProduct).Methods("GET")
	api.HandleFunc("/products/{key}/history", h.GetPriceHistory).Methods("GET")

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.AdminAuth(cfg.AdminPassword, next)
	}
	api.HandleFunc("/products", admin(h.AddProduct)).Methods("POST")
	api.HandleFunc("/products/{key}", admin(h.DeleteProduct)).Methods("DELETE")
	api.HandleFunc("/products/{key}/urls", admin(h.AddSiteURL)).Methods("POST")
	api.HandleFunc("/products/{key}/urls/{site}", admin(h.DeleteSiteURL)).Methods("DELETE")
	api.HandleFunc("/products/{key}/enabled", admin(h.SetEnabled)).Methods("POST")
	api.HandleFunc("/products/{key}/update-prices", admin(h.UpdatePrices)).Methods("POST")
	api.HandleFunc("/trigger-update", admin(h.TriggerUpdate)).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := cfg.Host + ":" + cfg.Port
	log.Infof("Server starting on %s", addr)

	log.Fatal(http.ListenAndServe(addr, c.Handler(r)))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service":   "coinwatch",
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
