package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/cors"

	"go-connect4/config"
	"go-connect4/domain/board"
	"go-connect4/domain/column"
	"go-connect4/domain/room"
	"go-connect4/realtime"
	"go-connect4/rpc"
	"go-connect4/server"
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

	httpClient := &http.Client{Timeout: 5 * time.Second}
	collector := board.NewCollector(logger)
	collector.Timeout = cfg.WinCheckTimeout

	hub := realtime.NewHub(logger)
	rooms := room.NewInMemoryService(room.Deps{
		Columns:   column.NewDirectory(cfg.ColumnAddresses(), rpc.ColumnDialer{HTTPClient: httpClient}),
		PowerUps:  rpc.NewPowerUpClient(httpClient, cfg.PowerUpURL()),
		Events:    rpc.NewEventClient(httpClient, cfg.EventURL()),
		Hub:       hub,
		Collector: collector,
		Logger:    logger,
	})
	srv := server.New(rooms, hub, logger)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect4-Error-Kind"},
	})
	srv.Upgrader.CheckOrigin = c.OriginAllowed

	mux := http.NewServeMux()
	coordinatorPath, coordinatorHandler := rpc.NewCoordinatorServiceHandler(
		srv,
		connect.WithInterceptors(rpc.NewValidateInterceptor()),
	)
	mux.Handle(coordinatorPath, coordinatorHandler)
	mux.HandleFunc("GET /ws/{playerID}", srv.ServeWS)

	addr := config.ListenAddr(cfg.CoordinatorPort)
	logger.Info("coordinator running",
		slog.String("addr", addr),
		slog.Int("columns", len(cfg.ColumnNodePorts)),
	)
	if err := http.ListenAndServe(addr, c.Handler(mux)); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
