package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/docket-api/internal/config"
	"github.com/phrazzld/docket-api/internal/platform/logger"
)

// setupLogger configures the application logger from config and installs
// it as the process default.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	return l, nil
}
