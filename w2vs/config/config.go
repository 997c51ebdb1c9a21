package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/w2v-sentiment/w2vs"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Training  TrainingConfig  `mapstructure:"training"`
	Model     ModelConfig     `mapstructure:"model"`
	Predict   PredictConfig   `mapstructure:"predict"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DataConfig locates the review files and the optional prediction store.
type DataConfig struct {
	TrainPath  string `mapstructure:"trainPath"`
	TestPath   string `mapstructure:"testPath"`
	EvalPath   string `mapstructure:"evalPath"`
	ResultPath string `mapstructure:"resultPath"`
	ResultDSN  string `mapstructure:"resultDSN"`
}

// EmbeddingConfig selects the word-vector source.
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
	Path     string `mapstructure:"path"`
	Dims     int    `mapstructure:"dims"`
}

type TokenizerConfig struct {
	Kind      string `mapstructure:"kind"`
	VocabPath string `mapstructure:"vocabPath"`
}

// TrainingConfig holds the batching parameters shared by training and inspection.
type TrainingConfig struct {
	BatchSize       int    `mapstructure:"batchSize"`
	Epochs          int    `mapstructure:"epochs"`
	TruncateLength  int    `mapstructure:"truncateLength"`
	Seed            int64  `mapstructure:"seed"`
	CheckpointPath  string `mapstructure:"checkpointPath"`
	CheckpointEvery int    `mapstructure:"checkpointEvery"`
}

type ModelConfig struct {
	Path              string `mapstructure:"path"`
	ExecutionProvider string `mapstructure:"executionProvider"`
}

type PredictConfig struct {
	Workers int `mapstructure:"workers"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables. An empty
// configPath searches the usual locations and falls back to defaults when no
// file is found; an explicit path must exist.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// training.batchSize is read from TRAINING_BATCHSIZE
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.trainPath", internal.DefaultTrainPath)
	v.SetDefault("data.testPath", internal.DefaultTestPath)
	v.SetDefault("data.evalPath", internal.DefaultEvalPath)
	v.SetDefault("data.resultPath", internal.DefaultResultPath)
	v.SetDefault("data.resultDSN", internal.DefaultResultDSN)

	v.SetDefault("embedding.provider", "word2vec")
	v.SetDefault("embedding.path", internal.DefaultWordVectors)
	v.SetDefault("embedding.dims", 50)

	v.SetDefault("tokenizer.kind", "common")
	v.SetDefault("tokenizer.vocabPath", "")

	v.SetDefault("training.batchSize", 64)
	v.SetDefault("training.epochs", 10)
	v.SetDefault("training.truncateLength", 50)
	v.SetDefault("training.seed", 0)
	v.SetDefault("training.checkpointPath", internal.DefaultCheckpointPath)
	v.SetDefault("training.checkpointEvery", 100)

	v.SetDefault("model.path", internal.DefaultModelPath)
	v.SetDefault("model.executionProvider", "cpu")

	v.SetDefault("predict.workers", 4)

	v.SetDefault("logging.level", "info")
}

// Validate rejects sizes the batch builder would refuse.
func (c *Config) Validate() error {
	switch {
	case c.Training.BatchSize < 1:
		return fmt.Errorf("training.batchSize must be at least 1, got %d", c.Training.BatchSize)
	case c.Training.TruncateLength < 1:
		return fmt.Errorf("training.truncateLength must be at least 1, got %d", c.Training.TruncateLength)
	case c.Training.Epochs < 1:
		return fmt.Errorf("training.epochs must be at least 1, got %d", c.Training.Epochs)
	case c.Embedding.Dims < 1:
		return fmt.Errorf("embedding.dims must be at least 1, got %d", c.Embedding.Dims)
	}
	return nil
}
