package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/service_registry"
	"github.com/benmeehan/fleet-mirror/internal/utils"
	"github.com/benmeehan/fleet-mirror/pkg/file"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fileClient := file.NewFileService()

	config, err := loadConfig(*configPath, fileClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	logger = newLogger(config)

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(fileClient, logger)

	// Register all services based on the configuration
	if err := serviceRegistry.RegisterServices(config); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services failed to stop")
		os.Exit(1)
	}
}

// loadConfig reads the file when present and falls back to built-in defaults.
func loadConfig(path string, fileClient file.FileOperations, logger zerolog.Logger) (*utils.Config, error) {
	exists, err := fileClient.IsFileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.Warn().Str("path", path).Msg("Configuration file not found, using defaults")
		return utils.DefaultConfig(), nil
	}
	return utils.LoadConfig(path, fileClient)
}

func newLogger(config *utils.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if config.Logging.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
