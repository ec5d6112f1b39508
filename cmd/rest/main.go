package main

import (
	"context"
	"log"

	"soulscript-be/internal/bootstrap"
	"soulscript-be/internal/config"
	"soulscript-be/internal/server"
	"soulscript-be/internal/tracer"
	"soulscript-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Ensure the predefined feature flags exist before serving traffic
	if err := container.FeatureFlagService.InitializePredefined(context.Background()); err != nil {
		log.Printf("Warning: predefined feature flag initialization failed: %v", err)
	}

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Moderation Alert Consumer...")
		if err := container.AlertConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}
