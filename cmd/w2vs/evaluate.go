package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [labeled.csv]",
		Short: "Score a labeled review set with the trained model and report accuracy, precision, recall and F1",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Data.EvalPath
			if len(args) == 1 {
				path = args[0]
			}
			store, it, err := a.labeledIterator(path, dataset.NewDiagnostics())
			if err != nil {
				return err
			}
			classifier, err := a.classifier()
			if err != nil {
				return err
			}
			defer classifier.Close()

			ev, err := a.evaluator(classifier)
			if err != nil {
				return err
			}
			eval, err := ev.EvaluateIterator(cmd.Context(), it)
			if err != nil {
				return err
			}
			stats := store.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d positives, %d negatives (%d malformed, %d unrecognized)\n",
				path, store.NumPositives(), store.NumNegatives(), stats.Malformed, stats.Unrecognized)
			fmt.Fprint(cmd.OutOrStdout(), eval.Stats())
			return nil
		},
	}
}
