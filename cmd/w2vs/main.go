package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	internal "github.com/ZanzyTHEbar/w2v-sentiment/w2vs"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/config"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/embedding"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/embedding/tokenizer"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/inference"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/records"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// openClassifier is swapped in tests that have no ONNX runtime.
var openClassifier = inference.NewClassifier

// app carries what every subcommand needs once the root has run.
type app struct {
	configPath string
	envFile    string

	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: internal.GetLogger()}

	root := &cobra.Command{
		Use:           internal.DefaultAppCMDShortCut,
		Short:         "Batch movie reviews into word-vector sequences and score them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search ., .., etc/w2vs, ~/.config/w2vs)")
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(newInspectCmd(a), newEvaluateCmd(a), newPredictCmd(a), newVocabCmd(a))
	return root
}

func (a *app) load() error {
	if a.envFile != "" {
		// a missing .env is normal outside development
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = internal.GetLoggerWithLevel(cfg.Logging.Level)
	return nil
}

// embeddings opens the configured word-vector provider and tokenizer.
func (a *app) embeddings() (embedding.Provider, tokenizer.Tokenizer, error) {
	vectors, err := embedding.NewProvider(a.cfg.Embedding.Provider, a.cfg.Embedding.Dims, a.cfg.Embedding.Path)
	if err != nil {
		return nil, nil, err
	}
	tok, err := tokenizer.New(tokenizer.Config{Kind: a.cfg.Tokenizer.Kind, VocabPath: a.cfg.Tokenizer.VocabPath})
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info().
		Str("provider", a.cfg.Embedding.Provider).
		Int("dims", vectors.Dimensions()).
		Str("tokenizer", a.cfg.Tokenizer.Kind).
		Msg("embeddings ready")
	return vectors, tok, nil
}

func (a *app) builderOptions(diag *dataset.Diagnostics) []dataset.BuilderOption {
	return []dataset.BuilderOption{
		dataset.WithBatchSize(a.cfg.Training.BatchSize),
		dataset.WithTruncateLength(a.cfg.Training.TruncateLength),
		dataset.WithDiagnostics(diag),
		dataset.WithLogger(a.logger),
	}
}

// labeledIterator loads a labeled file and wraps it in a batch iterator.
func (a *app) labeledIterator(path string, diag *dataset.Diagnostics) (*dataset.Store, *dataset.Iterator, error) {
	store, err := records.LoadStore(path, dataset.WithStoreLogger(a.logger))
	if err != nil {
		return nil, nil, err
	}
	vectors, tok, err := a.embeddings()
	if err != nil {
		return nil, nil, err
	}
	it, err := dataset.NewIterator(store, tok, vectors, a.builderOptions(diag)...)
	if err != nil {
		return nil, nil, err
	}
	return store, it, nil
}

// classifier opens the configured model.
func (a *app) classifier() (inference.Classifier, error) {
	return openClassifier(a.cfg.Model.Path, inference.Options{
		ExecutionProvider: a.cfg.Model.ExecutionProvider,
	})
}

func (a *app) evaluator(classifier inference.Classifier) (*inference.Evaluator, error) {
	return inference.NewEvaluator(classifier,
		inference.WithEvaluatorWorkers(a.cfg.Predict.Workers),
		inference.WithEvaluatorLogger(a.logger),
	)
}
