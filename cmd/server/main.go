package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app, cleanup, err := InitializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + app.Config.Port,
		Handler: app.Router,
	}

	go func() {
		log.Printf("Server starting on port %s", app.Config.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
			"room-registry": func(ctx context.Context) error {
				return app.Registry.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	cleanup()
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
