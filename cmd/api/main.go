package main

import (
	"os"

	"github.com/campusconnect/backend/internal/pkg/logger"
	"github.com/campusconnect/backend/internal/server"
)

// @title CampusConnect API
// @version 1.0
// @description API for the CampusConnect campus network: feed, messaging, bounties and director tools

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name auth_token
// @description Session JWT set by the login endpoints

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// blocks until shutdown
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
