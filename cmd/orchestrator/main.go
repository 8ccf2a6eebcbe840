// cmd/orchestrator/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"drivethru-dialogue/internal/collaborators/genai"
	"drivethru-dialogue/internal/collaborators/orderstore"
	"drivethru-dialogue/internal/collaborators/voice"
	"drivethru-dialogue/internal/common/config"
	"drivethru-dialogue/internal/common/database"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/common/observability"
	"drivethru-dialogue/internal/dialogue/aggregator"
	"drivethru-dialogue/internal/dialogue/executor"
	"drivethru-dialogue/internal/dialogue/parser"
	"drivethru-dialogue/internal/dialogue/pipeline"
	"drivethru-dialogue/internal/dialogue/routing"
	"drivethru-dialogue/internal/dialogue/statemachine"
	"drivethru-dialogue/internal/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dialogue orchestrator...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Session.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping()
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Collaborators ---
	genaiClient := genai.NewClient(genai.Config{
		BaseURL:    cfg.APIs.GenAI.BaseURL,
		APIKey:     cfg.APIs.GenAI.APIKey,
		Timeout:    time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond,
		MaxRetries: cfg.APIs.GenAI.MaxRetries,
	}, log)

	var voiceClient *voice.Client
	if cfg.APIs.Voice.BaseURL != "" {
		voiceClient = voice.NewClient(voice.Config{
			BaseURL: cfg.APIs.Voice.BaseURL,
			APIKey:  cfg.APIs.Voice.APIKey,
			Timeout: time.Duration(cfg.APIs.Voice.Timeout) * time.Millisecond,
			Voice:   cfg.APIs.Voice.Voice,
		}, log)
	}

	orders := orderstore.New(pg, cfg.Pipeline.MaxQuantityPerItem, log)
	sessions := session.NewRedisStore(
		redisClient,
		cfg.Session.KeyPrefix,
		time.Duration(cfg.Session.TTL)*time.Second,
		log,
	)

	// --- Dialogue components ---
	machine := statemachine.New()
	if err := machine.Validate(); err != nil {
		zapLog.Fatal("state machine incomplete", zap.Error(err))
	}
	router := routing.New()
	if err := router.Validate(); err != nil {
		zapLog.Fatal("routing table incomplete", zap.Error(err))
	}
	parserRouter := parser.NewRouter(genaiClient, log)
	if err := parserRouter.Validate(); err != nil {
		zapLog.Fatal("parser strategies incomplete", zap.Error(err))
	}

	deps := pipeline.Deps{
		Sessions:   sessions,
		Classifier: genaiClient,
		Parser:     parserRouter,
		Machine:    machine,
		Executor:   executor.New(orders, log),
		Router:     router,
		Aggregator: aggregator.New(genaiClient, log),
		Obs:        obs,
		Logger:     log,
	}
	if voiceClient != nil {
		deps.Voice = voiceClient
	}

	turns := pipeline.New(pipeline.Options{
		ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
		TurnTimeout:         time.Duration(cfg.Pipeline.TurnTimeout) * time.Millisecond,
		RestaurantName:      cfg.Pipeline.RestaurantName,
	}, deps)

	// --- HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/turn", handleTurn(turns, log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}

func handleTurn(turns *pipeline.Pipeline, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req pipeline.TurnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.SessionID == "" || req.Utterance == "" {
			http.Error(w, "session_id and utterance are required", http.StatusBadRequest)
			return
		}

		response := turns.ProcessTurn(r.Context(), req)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("encode turn response failed", map[string]interface{}{
				"turn_id": response.TurnID,
				"error":   err.Error(),
			})
		}
	}
}
