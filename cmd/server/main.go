package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"symptom-checker/internal/config"
	"symptom-checker/internal/diagnosis"
	"symptom-checker/internal/history"
	"symptom-checker/internal/knowledge"
	"symptom-checker/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 1. Infrastructure
	var db *sql.DB
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			break
		}
		log.Printf("Waiting for DB... (%d/10)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("Could not connect to DB: %v", err)
	}
	log.Println("Connected to Database.")

	// 2. Migrations
	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		log.Printf("Migration init failed: %v", err)
	} else {
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Printf("Migration up failed: %v", err)
		} else {
			log.Println("Migrations applied successfully!")
		}
	}

	// 3. Services
	kbRepo := knowledge.NewRepository(db)

	if seed, err := knowledge.LoadSeed(cfg.SeedFile); err != nil {
		log.Printf("Seed file not loaded: %v", err)
	} else if err := kbRepo.SeedIfEmpty(context.Background(), seed); err != nil {
		log.Printf("Knowledge base seeding failed: %v", err)
	}

	sessionStore := diagnosis.NewStore(cfg.SessionTTL)
	historyRepo := history.NewRepository(db)
	reportSvc := report.NewService()

	diagnosisSvc := diagnosis.NewService(kbRepo, sessionStore, historyRepo)
	diagnosisHandler := diagnosis.NewHandler(diagnosisSvc, reportSvc)
	knowledgeHandler := knowledge.NewHandler(kbRepo)
	historyHandler := history.NewHandler(historyRepo)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	})

	r.Route("/api", func(r chi.Router) {
		history.RegisterRoutes(r, historyHandler)
		diagnosis.RegisterRoutes(r, diagnosisHandler)
		knowledge.RegisterRoutes(r, knowledgeHandler)
	})

	log.Printf("Server starting on port %s (session TTL %s)...", cfg.Port, cfg.SessionTTL)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
