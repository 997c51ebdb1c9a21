package internal

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName names the config directory and env prefix
	DefaultAppName        = "w2vs"
	DefaultAppCMDShortCut = "w2vs"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultDataDir        = filepath.Join(DefaultConfigPath, "data")

	// Default dataset and artifact locations
	DefaultTrainPath      = filepath.Join(DefaultDataDir, "train.csv")
	DefaultTestPath       = filepath.Join(DefaultDataDir, "test.csv")
	DefaultEvalPath       = filepath.Join(DefaultDataDir, "eval.csv")
	DefaultResultPath     = filepath.Join(DefaultDataDir, "result.csv")
	DefaultWordVectors    = filepath.Join(DefaultDataDir, "vectors.bin")
	DefaultModelPath      = filepath.Join(DefaultDataDir, "model.onnx")
	DefaultCheckpointPath = filepath.Join(DefaultConfigPath, "checkpoint.yaml")

	// Default prediction store; empty disables it
	DefaultResultDSN = ""
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// GetLoggerWithLevel returns GetLogger filtered at the named level.
// Unknown names fall back to info.
func GetLoggerWithLevel(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return GetLogger().Level(lvl)
}
