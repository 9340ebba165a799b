package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/dongyar/internal/auth"
	"github.com/mmynk/dongyar/internal/config"
	"github.com/mmynk/dongyar/internal/metrics"
	"github.com/mmynk/dongyar/internal/middleware"
	"github.com/mmynk/dongyar/internal/service"
	"github.com/mmynk/dongyar/internal/storage/sqlite"
	"github.com/mmynk/dongyar/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()

	interceptors := []connect.Interceptor{
		middleware.LoggingInterceptor(nil),
		middleware.MetricsInterceptor(m),
	}
	opts := []service.Option{
		service.WithMetrics(m),
		service.WithPresentation(cfg.Locale, cfg.Currency),
	}
	if cfg.AuthEnabled() {
		jwtManager := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL)
		interceptors = append(interceptors, middleware.OptionalAuth(jwtManager, m))
		opts = append(opts, service.WithRequiredIdentity())
		slog.Info("Authentication enabled for saved settlements")
	}

	mux := http.NewServeMux()

	settlementPath, settlementHandler := service.NewSettlementServiceHandler(
		service.NewSettlementService(store, opts...),
		connect.WithInterceptors(interceptors...),
	)
	mux.Handle(settlementPath, settlementHandler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
