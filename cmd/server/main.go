package main

import (
	"log"

	"lens-backend/internal/app"
	"lens-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
}
