package main

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/inference"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/training"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		epochs     int
		resume     bool
		quiet      bool
		checkpoint string
		evalPath   string
	)
	cmd := &cobra.Command{
		Use:   "inspect [train.csv]",
		Short: "Drain the training set and report batch shapes and degenerate examples",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Data.TrainPath
			if len(args) == 1 {
				path = args[0]
			}
			diag := dataset.NewDiagnostics()
			store, it, err := a.labeledIterator(path, diag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := training.FitterFunc(func(ctx context.Context, b *dataset.Batch) error {
				if !quiet {
					fmt.Fprintf(out, "batch positions %d-%d: %d examples x %d dims x %d steps\n",
						b.Positions[0], b.Positions[b.Size()-1], b.Size(), it.InputColumns(), b.MaxLength)
				}
				return nil
			})
			if epochs < 1 {
				epochs = a.cfg.Training.Epochs
			}
			opts := []training.RunnerOption{
				training.WithEpochs(epochs),
				training.WithRunnerLogger(a.logger),
			}
			// checkpoints are only read or written when asked for
			if checkpoint == "" && resume {
				checkpoint = a.cfg.Training.CheckpointPath
			}
			if checkpoint != "" {
				opts = append(opts, training.WithCheckpoint(checkpoint, a.cfg.Training.CheckpointEvery))
			}
			var ev *inference.Evaluator
			if evalPath != "" {
				_, test, err := a.labeledIterator(evalPath, dataset.NewDiagnostics())
				if err != nil {
					return err
				}
				classifier, err := a.classifier()
				if err != nil {
					return err
				}
				defer classifier.Close()
				if ev, err = a.evaluator(classifier); err != nil {
					return err
				}
				opts = append(opts, training.WithEvaluation(ev, test))
			}

			runner, err := training.NewRunner(it, report, opts...)
			if err != nil {
				return err
			}
			if resume {
				if _, err := runner.ResumeFrom(); err != nil {
					return err
				}
			}

			a.logger.Debug().Int64("seed", a.cfg.Training.Seed).Msg("inspect run")
			sum, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			stats := store.Stats()
			fmt.Fprintf(out, "run %s: %d positives, %d negatives (%d malformed, %d unrecognized)\n",
				sum.RunID, store.NumPositives(), store.NumNegatives(), stats.Malformed, stats.Unrecognized)
			fmt.Fprintf(out, "%d epochs, %d batches, %d examples, %d degenerate emissions at %d positions\n",
				sum.Epochs, sum.Batches, sum.Examples, sum.Degenerate, diag.DegeneratePositions().GetCardinality())
			if ev != nil && sum.Epochs > 0 {
				last := ev.Last()
				fmt.Fprint(out, last.Stats())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&epochs, "epochs", 0, "number of epochs to drain (default training.epochs)")
	cmd.Flags().BoolVar(&resume, "resume", false, "continue from the checkpoint (default path training.checkpointPath)")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "save the cursor to this file while draining")
	cmd.Flags().StringVar(&evalPath, "eval", "", "labeled file scored with the model after every epoch")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the summary")
	return cmd
}
