package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/config"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/database"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/handlers"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/middleware"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/reports"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/repository"
	"github.com/brahian-mesa/Planea-Paga-al-Dia/internal/storage"
)

func main() {
	// 1. Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to PostgreSQL
	db := database.New(&cfg.DB)
	defer db.Close()

	// 3. Initialize file storage (S3-compatible bucket when configured,
	// local filesystem otherwise)
	fileStore, err := newFileStore(&cfg.Upload)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// 4. Report service over its datastore sources
	pool := db.GetPool()
	reportSvc := reports.New(
		repository.NewClients(pool),
		repository.NewCalendars(pool),
		repository.NewReports(pool),
	)

	// 5. Set up router with global middleware
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 6. Initialize handlers with their dependencies
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	clientHandler := handlers.NewClientHandler(db)
	eventHandler := handlers.NewEventHandler(db)
	taxCalendarHandler := handlers.NewTaxCalendarHandler(db, fileStore)
	reportHandler := handlers.NewReportHandler(db, reportSvc)
	uploadHandler := handlers.NewUploadHandler(db, fileStore)

	// 7. Public routes (no authentication required)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Planea & Paga al Día API"))
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(db.Health())
	})

	// Auth routes are public but throttled against credential stuffing
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rate.Every(12*time.Second), 5))
		r.Post("/api/users/register", authHandler.Register)
		r.Post("/api/users/login", authHandler.Login)
	})

	// Serve uploaded files (local storage serves from disk, S3 redirects)
	r.Get("/api/files/*", uploadHandler.ServeFile)

	// 8. Protected routes (require valid JWT)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		// Current user profile
		r.Get("/api/users/me", authHandler.GetMe)

		// Clients
		r.Route("/api/clients", func(r chi.Router) {
			r.Get("/", clientHandler.List)
			r.Post("/", clientHandler.Create)
			r.Get("/{id}", clientHandler.GetByID)
			r.Put("/{id}", clientHandler.Update)
			r.Delete("/{id}", clientHandler.Delete)
		})

		// Calendar events
		r.Route("/api/calendar", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Post("/", eventHandler.Create)
			r.Get("/client/{client_id}", eventHandler.ListByClient)
			r.Get("/{id}", eventHandler.GetByID)
			r.Put("/{id}", eventHandler.Update)
			r.Delete("/{id}", eventHandler.Delete)
		})

		// Annual tax calendar and its digit-keyed dates
		r.Route("/api/tax-calendar", func(r chi.Router) {
			r.Get("/", taxCalendarHandler.List)
			r.Post("/upload", taxCalendarHandler.Upload)
			r.Post("/dates", taxCalendarHandler.AddDates)
			r.Get("/client/{client_id}/dates", taxCalendarHandler.DatesByClient)
			r.Get("/nit/{nit}/dates", taxCalendarHandler.DatesByNit)
			r.Get("/{calendar_id}/dates", taxCalendarHandler.DatesByCalendar)
		})

		// Reports: CRUD plus computed dashboards
		r.Route("/api/reports", func(r chi.Router) {
			r.Post("/", reportHandler.Create)
			r.Get("/dashboard/{user_id}", reportHandler.Dashboard)
			r.Get("/user/{user_id}/tax-dates", reportHandler.TaxDates)
			r.Get("/user/{user_id}/overdue", reportHandler.Overdue)
			r.Get("/user/{user_id}/type/{report_type}", reportHandler.ListByType)
			r.Get("/user/{user_id}", reportHandler.ListByUser)
			r.Get("/client/{client_id}", reportHandler.ListByClient)
			r.Get("/{report_id}", reportHandler.GetByID)
			r.Put("/{report_id}", reportHandler.Update)
			r.Delete("/{report_id}", reportHandler.Delete)
		})

		// File upload with PDF text extraction
		r.Post("/api/uploads/upload", uploadHandler.Upload)
	})

	// 9. Start server with graceful shutdown
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server started on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-done
	log.Println("Server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

// newFileStore picks the storage backend from configuration.
func newFileStore(cfg *config.UploadConfig) (storage.Store, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3Store(cfg.S3Region, cfg.S3Endpoint,
			cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	}
	return storage.NewLocalStore(cfg.Dir, cfg.BaseURL)
}
