//go:build wireinject
// +build wireinject

package main

import (
	"study-chat-server/internal/config"
	"study-chat-server/internal/handler"
	"study-chat-server/internal/hub"
	"study-chat-server/internal/repository/mongo"
	"study-chat-server/internal/repository/postgres"
	"study-chat-server/internal/service"

	"github.com/google/wire"
)

// InitializeApp creates a new application.
func InitializeApp() (*App, func(), error) {
	wire.Build(
		config.Load,
		// Database & Context Providers
		wire.NewSet(
			provideContext,
			providePostgresDB,
			provideMongoDB,
		),
		// Repository Providers
		wire.NewSet(
			mongo.NewMessageStore,
			wire.Bind(new(service.MessageStore), new(*mongo.MessageStore)),

			postgres.NewGroupRepository,
			wire.Bind(new(service.GroupDirectory), new(*postgres.GroupRepository)),
		),
		// Hub Providers
		wire.NewSet(
			provideRoomConfig,
			hub.NewRegistry,
		),
		// Handler Providers
		wire.NewSet(
			provideTokenResolver,
			handler.NewWebsocketHandler,
			provideHistoryHandler,
			provideRouter,
		),
		// App Provider
		wire.NewSet(
			wire.Struct(new(App), "*"),
		),
	)
	return nil, nil, nil
}
