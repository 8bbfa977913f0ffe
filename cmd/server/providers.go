package main

import (
	"context"
	"database/sql"
	"study-chat-server/internal/auth"
	"study-chat-server/internal/config"
	"study-chat-server/internal/handler"
	"study-chat-server/internal/hub"
	"study-chat-server/internal/repository/mongo"
	"study-chat-server/internal/repository/postgres"
	"study-chat-server/internal/service"

	"github.com/gorilla/mux"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// App is the main application container.
type App struct {
	Config   *config.Config
	Registry *hub.Registry
	Router   *mux.Router
}

func provideContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	return ctx, func() { cancel() }
}

func providePostgresDB(cfg *config.Config) (*sql.DB, func(), error) {
	if err := postgres.RunMigrations(cfg.PostgresURL); err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewDB(cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { db.Close() }
	return db, cleanup, nil
}

func provideMongoDB(ctx context.Context, cfg *config.Config) (*mongodriver.Database, func(), error) {
	db, err := mongo.NewDB(ctx, cfg.MongoURL)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { db.Client().Disconnect(ctx) }
	return db, cleanup, nil
}

func provideTokenResolver(cfg *config.Config) *auth.TokenResolver {
	return auth.NewTokenResolver(cfg.JWTSecret)
}

func provideRoomConfig(cfg *config.Config) hub.RoomConfig {
	return hub.RoomConfig{
		MaxMembers:   cfg.MaxRoomMembers,
		HistoryLimit: cfg.HistoryLimit,
	}
}

func provideHistoryHandler(store service.MessageStore, cfg *config.Config) *handler.HistoryHandler {
	return handler.NewHistoryHandler(store, cfg.HistoryLimit)
}

func provideRouter(ws *handler.WebsocketHandler, history *handler.HistoryHandler, tokens *auth.TokenResolver) *mux.Router {
	r := mux.NewRouter()

	// WebSocket route: /ws?token=<jwt>
	r.HandleFunc("/ws", ws.HandleConnection).Methods("GET")
	r.HandleFunc("/healthz", handler.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(tokens.Middleware)
	api.HandleFunc("/messages/{roomId}", history.GetMessages).Methods("GET")

	return r
}
