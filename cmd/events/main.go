package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/cors"

	"go-connect4/config"
	"go-connect4/domain/column"
	"go-connect4/domain/event"
	"go-connect4/rpc"
	"go-connect4/server"
	"go-connect4/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("error loading config",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	store, err := snapshot.Connect(context.Background(), cfg.RedisAddr, cfg.RedisDB, cfg.SnapshotTTL)
	if err != nil {
		logger.Warn("snapshot store unavailable, running without recovery",
			slog.String("error", err.Error()),
		)
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: 5 * time.Second}
	columns := column.NewDirectory(cfg.ColumnAddresses(), rpc.ColumnDialer{HTTPClient: httpClient})
	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	scheduler := event.NewScheduler(columns, rnd, store, logger)
	scheduler.SetNotifier(rpc.NewCoordinatorClient(httpClient, cfg.CoordinatorURL()))

	mux := http.NewServeMux()
	eventPath, eventHandler := rpc.NewEventServiceHandler(
		&server.EventServer{Service: scheduler},
		connect.WithInterceptors(rpc.NewValidateInterceptor()),
	)
	mux.Handle(eventPath, eventHandler)

	addr := config.ListenAddr(cfg.EventPort)
	logger.Info("random event engine running", slog.String("addr", addr))
	handler := cors.New(cors.Options{AllowedOrigins: cfg.AllowedOrigins}).Handler(mux)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
