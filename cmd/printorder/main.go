package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/phenrril/printorder/internal/app"
	"github.com/phenrril/printorder/internal/config"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := application.Migrate(ctx); err != nil {
		cancel()
		zlog.Fatal().Err(err).Msg("failed to migrate store")
	}
	cancel()

	port := cfg.Port
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		zlog.Warn().Err(err).Str("port", port).Msg("port busy, trying fallbacks")
		for p := 8081; p <= 8090; p++ {
			alt := net.JoinHostPort("", fmt.Sprintf("%d", p))
			l2, err2 := net.Listen("tcp", alt)
			if err2 == nil {
				ln = l2
				port = fmt.Sprint(p)
				break
			}
		}
		if ln == nil {
			zlog.Fatal().Msg("no free port between 8081 and 8090")
		}
	}

	server := &http.Server{Handler: application.HTTPHandler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		zlog.Info().Str("port", port).Str("store", cfg.StoreBackend).Msg("listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("shutting down")
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = server.Shutdown(shutCtx)
}
