package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iammorganparry/clive/apps/tasks/internal/api"
	"github.com/iammorganparry/clive/apps/tasks/internal/board"
	"github.com/iammorganparry/clive/apps/tasks/internal/config"
	"github.com/iammorganparry/clive/apps/tasks/internal/llm"
	"github.com/iammorganparry/clive/apps/tasks/internal/seed"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
	"github.com/iammorganparry/clive/apps/tasks/internal/suggest"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(os.Getenv("LOG_LEVEL"))
			slog.SetDefault(logger)

			cfg, err := config.Load()
			if err != nil {
				logger.Error("failed to load config", "error", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return Serve(ctx, ln, cfg, logger)
		},
	}
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	if level == "debug" {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// openStore returns the configured task store and a func releasing it.
func openStore(cfg *config.Config) (store.TaskStore, func() error, error) {
	if cfg.StoreDriver != config.StoreSQLite {
		return store.NewMemoryTaskStore(), func() error { return nil }, nil
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return store.NewSQLiteTaskStore(db), db.Close, nil
}

// Serve wires the service together and serves on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, cfg *config.Config, logger *slog.Logger) error {
	// Store
	taskStore, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Seed
	seeds, err := seed.LoadFile(cfg.SeedFile)
	if err != nil {
		return err
	}
	n, err := seed.Apply(taskStore, seeds)
	if err != nil {
		return err
	}
	logger.Info("store seeded", "driver", cfg.StoreDriver, "tasks", n)

	// Generator
	gen, err := llm.New(llm.Options{
		Provider:      cfg.SuggestProvider,
		GeminiBaseURL: cfg.GeminiBaseURL,
		GeminiModel:   cfg.GeminiModel,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
		Timeout:       cfg.SuggestTimeout,
	})
	if err != nil {
		return err
	}
	if cfg.SuggestProvider == llm.ProviderGemini && cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, subtask suggestions will fail")
	}

	// Board
	suggester := suggest.NewClient(gen, logger)
	b := board.New(taskStore, suggester, board.NewHub(board.DefaultRecentLimit), logger)
	sessions := board.NewSessionRegistry(b)

	// Router
	router := api.NewRouter(taskStore, b, sessions, suggester, gen, logger)

	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tasks server starting", "addr", ln.Addr().String(), "generator", gen.ID())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Let in-flight suggestion requests finish writing to the store.
	settled := make(chan struct{})
	go func() {
		b.Wait()
		close(settled)
	}()
	select {
	case <-settled:
	case <-shutdownCtx.Done():
		logger.Warn("suggestion requests still running at shutdown", "loading", b.Loading())
	}

	logger.Info("server stopped")
	return nil
}
