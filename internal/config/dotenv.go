// Package config loads process-level configuration for the textdigest commands:
// .env files, webhook settings and the YAML list of digest sources.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded by LoadDotEnv when no file is given.
const DefaultEnvFile = ".env"

// LoadDotEnv loads variables from files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(logger *slog.Logger, files ...string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("env file not found, skipping", slog.String("file", file))
				continue
			}
			return fmt.Errorf("load env file %s: %w", file, err)
		}
		logger.Info("env file loaded", slog.String("file", file))
	}
	return nil
}
