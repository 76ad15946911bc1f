package main

import (
	"fmt"

	"go.uber.org/zap"

	"pitwall/internal/config"
	"pitwall/internal/logging"
)

const defaultConfigPath = "pitwall.yaml"

// loadStage builds the shared dependencies every pipeline command
// needs: the parsed config and the injected logger.
func loadStage(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Logging.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
