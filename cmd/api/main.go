package main

import (
	"context"
	"os"

	"github.com/yigit/resultsportal/internal/pkg/logger"
	"github.com/yigit/resultsportal/internal/server"
)

// @title Results Portal API
// @version 1.0
// @description Student results portal: accounts, sessions and the report registry

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
// @description Session token set by /users/login

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
