package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lckrugel/payment-gateway/internal/clients"
	"github.com/lckrugel/payment-gateway/internal/config"
	"github.com/lckrugel/payment-gateway/internal/handlers"
	"github.com/lckrugel/payment-gateway/internal/queue"
	"github.com/lckrugel/payment-gateway/internal/repositories"
	"github.com/lckrugel/payment-gateway/internal/workers"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	return r
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // Default to INFO
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func registerRoutes(r *gin.Engine, h *handlers.PaymentHandlers) {
	r.POST("payments", h.HandlePayment)
	r.GET("payments-summary", h.HandlePaymentSummary)
	r.POST("payments-purge", h.PurgePayments)
}

// setupStore escolhe o backend do store: Redis quando configurado, senão o
// processo de store pelo unix socket.
func setupStore(cfg *config.Config) (clients.Store, func()) {
	if cfg.RedisHost != "" {
		redisStore := repositories.NewRedisStore(cfg.RedisHost+":6379", cfg.RedisPassword)
		slog.Info("Usando store Redis", "host", cfg.RedisHost)
		return redisStore, func() { redisStore.Close() }
	}

	slog.Info("Usando store por unix socket", "path", cfg.WriterSocketPath)
	return clients.NewMemoryStoreClient(cfg.WriterSocketPath), func() {}
}

func listen(cfg *config.Config) (net.Listener, error) {
	if cfg.ServiceSocketPath == "" {
		return net.Listen("tcp", ":8080")
	}

	os.Remove(cfg.ServiceSocketPath)
	listener, err := net.Listen("unix", cfg.ServiceSocketPath)
	if err != nil {
		return nil, err
	}
	os.Chmod(cfg.ServiceSocketPath, 0666)
	return listener, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Erro ao carregar configuração", "err", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	store, closeStore := setupStore(cfg)
	defer closeStore()

	paymentQueue := queue.NewPaymentQueue(cfg.MaxQueueSize, cfg.MaxWaitTime())
	processorClient := clients.NewProcessorClient(cfg.ProcessorDefaultURL, cfg.ProcessorFallbackURL)
	pacingSignal := workers.NewPacingSignal()

	healthChecker := workers.NewHealthCheckWorker(pacingSignal, cfg.ProcessorDefaultURL, cfg.HealthCheckInterval())
	dispatcher := workers.NewDispatcher(paymentQueue, processorClient, store, pacingSignal, workers.DispatcherConfig{
		BatchSize:           cfg.BatchSize,
		ConcurrentRequests:  cfg.ConcurrentRequests,
		MinWait:             cfg.MinWaitTime(),
		MaxWait:             cfg.MaxWaitTime(),
		QueueDrainThreshold: cfg.QueueDrainThreshold,
	})

	paymentHandlers := handlers.NewPaymentHandlers(paymentQueue, store)

	r := setupRouter()
	registerRoutes(r, paymentHandlers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go healthChecker.Start(ctx)

	dispatcherDone := make(chan struct{})
	go func() {
		dispatcher.Start(ctx)
		close(dispatcherDone)
	}()

	listener, err := listen(cfg)
	if err != nil {
		slog.Error("Erro ao abrir o socket de escuta", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{Handler: r}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Erro no servidor HTTP", "err", err)
		}
	}()

	slog.Info("API de pagamentos no ar", "addr", listener.Addr().String())

	<-ctx.Done()
	slog.Info("Desligamento iniciado, drenando chunks em voo")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Erro no desligamento do servidor", "err", err)
	}

	select {
	case <-dispatcherDone:
	case <-shutdownCtx.Done():
		slog.Warn("Despachante não terminou dentro do prazo de desligamento")
	}
}
