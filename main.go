package main

import (
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/finsight/backend/src/config"
	"github.com/username/finsight/backend/src/handlers"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/narrative"
	"github.com/username/finsight/backend/src/processors"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/storage"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}
		if config.Cfg.FrontendURL != "" {
			allowedOrigins[config.Cfg.FrontendURL] = true
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	db := storage.OpenDB(config.Cfg.DatabasePath)
	storage.RunMigrations(db, config.Cfg.DatabasePath)

	store := storage.NewSQLiteStore(db)

	var narrativeSvc narrative.Service = narrative.Disabled{}
	if config.Cfg.NarrativeEnabled {
		narrativeSvc = narrative.NewGeminiService(config.Cfg.GeminiModel, config.Cfg.NarrativeTimeout)
		logger.L.Info("Narrative layer enabled", "model", config.Cfg.GeminiModel)
	}

	reportCache := cache.New(config.Cfg.ReportCacheTTL, 2*config.Cfg.ReportCacheTTL)

	ingestionService := services.NewIngestionService(store)
	reportService := services.NewReportService(
		store,
		processors.NewSummaryProcessor(config.Cfg.TopMerchantsLimit),
		processors.NewAnomalyProcessor(processors.AnomalyConfig{
			OutlierMultiplier: config.Cfg.AnomalyOutlierMultiplier,
			SpikeMultiplier:   config.Cfg.AnomalySpikeMultiplier,
			MinPriorMonths:    config.Cfg.AnomalyMinPriorMonths,
			IncomeDropRatio:   config.Cfg.IncomeDropRatio,
			GrowthMultiplier:  config.Cfg.AnomalyGrowthMultiplier,
		}),
		processors.NewRecommendationProcessor(config.Cfg.DefaultRecommendations),
		narrativeSvc,
		reportCache,
	)

	uploadHandler := handlers.NewUploadHandler(ingestionService)
	reportHandler := handlers.NewReportHandler(reportService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", uploadHandler.HandleUpload)
		r.Get("/datasets/{datasetID}/report", reportHandler.HandleGetReport)
		r.Get("/datasets/{datasetID}/months", reportHandler.HandleGetMonths)
	})

	server := &http.Server{
		Addr:         ":" + config.Cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.L.Info("Starting server", "port", config.Cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		stdlog.Fatalf("server stopped: %v", err)
	}
}
