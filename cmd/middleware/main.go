package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/qainatsaeed/BlackBox-LLM/internal/bootstrap"
	"github.com/qainatsaeed/BlackBox-LLM/internal/config"
	"github.com/qainatsaeed/BlackBox-LLM/internal/server"
	"github.com/qainatsaeed/BlackBox-LLM/internal/tracer"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/database"
)

func main() {
	color.Cyan("🚀 HR Query Middleware")

	// 1. Load Configuration
	cfg := config.Load()
	color.Green("Queue: %s -> %s (%d workers)", cfg.Queue.AskQueue, cfg.Queue.ResponseQueue, cfg.Queue.Workers)

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 5. Start Queue Consumer
	ctx, cancel := context.WithCancel(context.Background())
	gatewayDone := make(chan error, 1)
	go func() {
		log.Println("Background: Starting Queue Gateway...")
		gatewayDone <- container.Gateway.Run(ctx)
	}()

	// 6. Run HTTP Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("HTTP Server Error: %v", err)
		}
	}()

	// 7. Wait for Shutdown Signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, draining...")

	// Stop intake, let in-flight envelopes finish within the grace period.
	cancel()
	if err := <-gatewayDone; err != nil {
		log.Printf("Gateway shutdown: %v", err)
	}

	if err := srv.GetApp().Shutdown(); err != nil {
		log.Printf("HTTP Server shutdown: %v", err)
	}

	log.Println("Shutdown complete")
}
