package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/w2v-sentiment/w2vs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir = suite.T().TempDir()

	// Run from an empty directory so no stray config.yaml is picked up
	require.NoError(suite.T(), os.Chdir(suite.tempDir))
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		_ = os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) writeConfig(name, content string) string {
	path := filepath.Join(suite.tempDir, name)
	require.NoError(suite.T(), os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), internal.DefaultTrainPath, cfg.Data.TrainPath)
	assert.Equal(suite.T(), internal.DefaultTestPath, cfg.Data.TestPath)
	assert.Equal(suite.T(), internal.DefaultEvalPath, cfg.Data.EvalPath)
	assert.Equal(suite.T(), internal.DefaultResultPath, cfg.Data.ResultPath)
	assert.Empty(suite.T(), cfg.Data.ResultDSN)

	assert.Equal(suite.T(), "word2vec", cfg.Embedding.Provider)
	assert.Equal(suite.T(), 50, cfg.Embedding.Dims)
	assert.Equal(suite.T(), "common", cfg.Tokenizer.Kind)

	assert.Equal(suite.T(), 64, cfg.Training.BatchSize)
	assert.Equal(suite.T(), 10, cfg.Training.Epochs)
	assert.Equal(suite.T(), 50, cfg.Training.TruncateLength)
	assert.Equal(suite.T(), int64(0), cfg.Training.Seed)
	assert.Equal(suite.T(), internal.DefaultCheckpointPath, cfg.Training.CheckpointPath)

	assert.Equal(suite.T(), "cpu", cfg.Model.ExecutionProvider)
	assert.Equal(suite.T(), 4, cfg.Predict.Workers)
	assert.Equal(suite.T(), "info", cfg.Logging.Level)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configFile := suite.writeConfig("config.yaml", `
data:
  trainPath: "./reviews/train.csv"
  resultDSN: "file:./results.db"
embedding:
  provider: "hash"
  dims: 8
tokenizer:
  kind: "wordpiece"
  vocabPath: "./vocab.txt"
training:
  batchSize: 3
  truncateLength: 10
  epochs: 2
predict:
  workers: 2
logging:
  level: "debug"
`)

	cfg, err := LoadConfig(configFile)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "./reviews/train.csv", cfg.Data.TrainPath)
	assert.Equal(suite.T(), "file:./results.db", cfg.Data.ResultDSN)
	assert.Equal(suite.T(), "hash", cfg.Embedding.Provider)
	assert.Equal(suite.T(), 8, cfg.Embedding.Dims)
	assert.Equal(suite.T(), "wordpiece", cfg.Tokenizer.Kind)
	assert.Equal(suite.T(), "./vocab.txt", cfg.Tokenizer.VocabPath)
	assert.Equal(suite.T(), 3, cfg.Training.BatchSize)
	assert.Equal(suite.T(), 10, cfg.Training.TruncateLength)
	assert.Equal(suite.T(), 2, cfg.Training.Epochs)
	assert.Equal(suite.T(), 2, cfg.Predict.Workers)
	assert.Equal(suite.T(), "debug", cfg.Logging.Level)

	// Unset keys keep their defaults
	assert.Equal(suite.T(), internal.DefaultTestPath, cfg.Data.TestPath)
	assert.Equal(suite.T(), "cpu", cfg.Model.ExecutionProvider)
}

func (suite *ConfigTestSuite) TestLoadConfigFromSearchPath() {
	suite.writeConfig("config.yaml", "training:\n  batchSize: 7\n")

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 7, cfg.Training.BatchSize)
}

func (suite *ConfigTestSuite) TestEnvironmentOverridesDefaults() {
	suite.T().Setenv("TRAINING_BATCHSIZE", "16")
	suite.T().Setenv("EMBEDDING_PROVIDER", "hash")

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 16, cfg.Training.BatchSize)
	assert.Equal(suite.T(), "hash", cfg.Embedding.Provider)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	configFile := suite.writeConfig("malformed.yaml", `
training:
  batchSize: 3
  invalid_yaml: [unclosed bracket
`)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigRejectsInvalidSizes() {
	configFile := suite.writeConfig("zero.yaml", "training:\n  batchSize: 0\n")

	cfg, err := LoadConfig(configFile)

	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "training.batchSize")
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Training.BatchSize, AppConfig.Training.BatchSize)
	assert.Equal(suite.T(), cfg.Data.TrainPath, AppConfig.Data.TrainPath)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Embedding: EmbeddingConfig{Dims: 50},
		Training:  TrainingConfig{BatchSize: 64, Epochs: 1, TruncateLength: 50},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"truncate", func(c *Config) { c.Training.TruncateLength = 0 }, "training.truncateLength"},
		{"epochs", func(c *Config) { c.Training.Epochs = 0 }, "training.epochs"},
		{"dims", func(c *Config) { c.Embedding.Dims = -1 }, "embedding.dims"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

// BenchmarkLoadConfig benchmarks config loading performance
func BenchmarkLoadConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(""); err != nil {
			b.Fatal(err)
		}
	}
}
