package main

import (
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taskscope/taskscope/internal/api"
	"github.com/taskscope/taskscope/internal/classifier"
	"github.com/taskscope/taskscope/internal/middleware"
	"github.com/taskscope/taskscope/internal/queue"
	"github.com/taskscope/taskscope/internal/repository"
)

func main() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// History is optional on the server; jobs still flow without Postgres.
	var repo repository.Repository
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		pg, err := repository.NewPostgresRepository(dsn)
		if err != nil {
			log.Fatal(err)
		}
		repo = pg

		defer func() {
			if err := pg.Close(); err != nil {
				log.Printf("failed to close Postgres repository: %v", err)
			}
		}()
	}

	q, err := queue.NewQueue(redisAddr, repo)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := q.Close(); err != nil {
			log.Printf("failed to close server queue: %v", err)
		}
	}()

	apiHandler := api.NewAPI(q, classifier.NewAnalyzer())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", middleware.MetricsMiddleware(apiHandler))

	go startMetricsCollector(q)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	log.Printf("Connected to Redis at %s", redisAddr)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}
