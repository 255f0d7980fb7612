package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskscope/taskscope/internal/classifier"
	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/queue"
	"github.com/taskscope/taskscope/internal/repository"
	"github.com/taskscope/taskscope/internal/worker"
	"github.com/taskscope/taskscope/internal/worker/handlers"
)

func main() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	postgresDSN := os.Getenv("POSTGRES_DSN")
	if postgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	repo, err := repository.NewPostgresRepository(postgresDSN)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close Postgres repository: %v", err)
		}
	}()

	q, err := queue.NewQueue(redisAddr, repo)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := q.Close(); err != nil {
			log.Printf("failed to close worker queue: %v", err)
		}
	}()

	workerID := os.Getenv("WORKER_ID")
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%d", time.Now().Unix())
	}

	w := worker.NewWorker(workerID, q)

	analyze := handlers.NewAnalyzeHandler(classifier.NewAnalyzer(), repo)
	report := handlers.NewReportGenerator(repo.DB())
	digest := handlers.NewDigestHandler(repo)

	w.RegisterHandler(job.TypeAnalyze, analyze.Handle)
	w.RegisterHandler(job.TypeReport, report.Handle)
	w.RegisterHandler(job.TypeDigest, digest.Handle)

	go w.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down worker...")
	w.Stop()
}
