package main

import (
	"CabbageAI/internal/config"
	"CabbageAI/pkg/log"
	"CabbageAI/pkg/yolo"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	validator := config.NewValidator()
	appConfig, err := config.LoadAppConfig(validator)
	if err != nil {
		logger.Fatalf("Error loading configuration: %v", err)
	}

	logger.Infof("Loading model from: %s", appConfig.ModelPath)
	detector, err := yolo.New(appConfig.DetectorConfig())
	if err != nil {
		logger.Fatalf("Failed to load model: %v", err)
	}
	defer detector.Close()

	fiberApp := config.NewFiber(logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithMiddleware(),
		config.WithDetector(detector),
		config.WithCORS(appConfig.CORS()),
		config.WithAddress(appConfig.Address()),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error shutting down server: %v", err)
	}
}
