package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-shopping-assistant-be/internal/bootstrap"
	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/model"
	"ai-shopping-assistant-be/internal/observe"
	"ai-shopping-assistant-be/internal/server"
	"ai-shopping-assistant-be/internal/tracer"
	"ai-shopping-assistant-be/pkg/database"

	"gorm.io/gorm"
)

const serviceName = "ai-shopping-assistant-be"

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Telemetry
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, serviceName, cfg.App.Version)
	defer shutdownTracer(context.Background())

	shutdownMetrics, err := observe.InitMetrics(ctx, serviceName, cfg.App.Version)
	if err != nil {
		log.Printf("[WARN] Failed to initialize metrics: %v", err)
	} else {
		defer shutdownMetrics(context.Background())
	}

	// 3. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(gormDB, model.All()...); err != nil {
				log.Panicf("Unable to migrate database: %v", err)
			}
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	// 5. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Panicf("Unable to start background services: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
