package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gobenford/internal"
	"gobenford/internal/api"
	"gobenford/internal/config"
	"gobenford/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	deps, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("❌ Failed to initialize container: %v", err)
	}
	internal.DefaultLogger = deps.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appConfig.StoreEnabled() {
		if err := deps.InitWithDatabase(ctx); err != nil {
			log.Fatalf("❌ Failed to open run store: %v", err)
		}
		log.Printf("✅ Run store ready (%s)", appConfig.Database.Driver)
	} else {
		log.Println("Run store disabled (DATABASE_URL is empty)")
	}
	defer deps.Shutdown(context.Background())

	server := api.NewServer(deps.AnalysisService, appConfig.Analysis, deps.Logger)

	log.Printf("🚀 Starting gobenford API on port %s", appConfig.Server.Port)
	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Printf("❌ Server stopped: %v", err)
		deps.Shutdown(context.Background())
		stop()
		os.Exit(1)
	}
}
