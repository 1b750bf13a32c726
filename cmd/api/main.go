package main

import (
	"log"

	"courses-backend/internal/bootstrap"
	"courses-backend/internal/shared/config"
	"courses-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	app.Sweeper.Start()
	defer app.Sweeper.Stop()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting course server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
