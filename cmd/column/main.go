package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"connectrpc.com/connect"
	"github.com/rs/cors"

	"go-connect4/config"
	"go-connect4/domain/column"
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
	logger := config.NewLogger(cfg, os.Stdout).With(slog.Int("column", cfg.ColumnID))
	slog.SetDefault(logger)

	store, err := snapshot.Connect(context.Background(), cfg.RedisAddr, cfg.RedisDB, cfg.SnapshotTTL)
	if err != nil {
		logger.Warn("snapshot store unavailable, running without recovery",
			slog.String("error", err.Error()),
		)
	}
	defer store.Close()

	svc := column.NewInMemoryService(cfg.ColumnID, store, logger)

	mux := http.NewServeMux()
	columnPath, columnHandler := rpc.NewColumnServiceHandler(
		&server.ColumnServer{Service: svc},
		connect.WithInterceptors(rpc.NewValidateInterceptor()),
	)
	mux.Handle(columnPath, columnHandler)

	addr := config.ListenAddr(cfg.ColumnPort())
	logger.Info("column service running", slog.String("addr", addr))
	handler := cors.New(cors.Options{AllowedOrigins: cfg.AllowedOrigins}).Handler(mux)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
