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
	"time"

	"github.com/handsomefox/showboard/internal/auth"
	"github.com/handsomefox/showboard/internal/config"
	"github.com/handsomefox/showboard/internal/handlers"
	"github.com/handsomefox/showboard/internal/logger"
	"github.com/handsomefox/showboard/internal/shows"
	"github.com/handsomefox/showboard/internal/store"
	"github.com/handsomefox/showboard/internal/tvmaze"
)

func main() {
	if err := run(); err != nil {
		fmt.Println("Error:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(level)
	slog.SetDefault(log)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close DB", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminEmail != "" {
		if err := seedAdmin(ctx, st, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		slog.Info("admin account ready", slog.String("email", cfg.AdminEmail))
	}

	catalog := tvmaze.New(tvmaze.Options{
		BaseURL:        cfg.TVMazeBaseURL,
		CountryBaseURL: cfg.TVMazeCountryBaseURL,
		Timeout:        cfg.TVMazeTimeout,
	})
	svc, err := shows.NewService(catalog, shows.WithViews(shows.SeededViews{Seed: cfg.ViewsSeed}))
	if err != nil {
		return fmt.Errorf("failed to init shows: %w", err)
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("failed to init tokens: %w", err)
	}

	app, err := handlers.New(&handlers.Config{Store: st, Shows: svc, Tokens: tokens})
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr: addr,
		Handler: app.NewRouter(handlers.RouterOptions{
			Logger:             log,
			LogLevel:           level,
			CORSOrigins:        cfg.CORSOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func seedAdmin(ctx context.Context, st *store.Store, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = st.UpsertUser(ctx, &store.User{Email: email, PasswordHash: hash, Role: string(auth.RoleAdmin)})
	return err
}
