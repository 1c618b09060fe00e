package main

import (
	"os"

	"github.com/yigit/transcriptledger/internal/pkg/logger"
	"github.com/yigit/transcriptledger/internal/server"
)

// @title Transcript Ledger API
// @version 1.0
// @description Role-gated registry of institutions, students and academic transcripts

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token obtained from /auth/login

func main() {
	// CONFIG_PATH overrides configs/config.yaml
	srv, err := server.NewServer(os.Getenv("CONFIG_PATH"))
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
