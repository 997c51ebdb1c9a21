package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/db"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/inference"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/records"

	"github.com/spf13/cobra"
)

func newPredictCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "predict [test.csv]",
		Short: "Score unlabeled reviews with the trained model and write ID,Pred rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Data.TestPath
			if len(args) == 1 {
				path = args[0]
			}
			if output == "" {
				output = a.cfg.Data.ResultPath
			}

			rows, err := records.ReadUnlabeledFile(path, a.logger)
			if err != nil {
				return err
			}
			vectors, tok, err := a.embeddings()
			if err != nil {
				return err
			}
			encoder, err := dataset.NewEncoder(tok, vectors)
			if err != nil {
				return err
			}
			classifier, err := a.classifier()
			if err != nil {
				return err
			}
			defer classifier.Close()

			predictor, err := inference.NewPredictor(encoder, classifier, a.cfg.Training.TruncateLength,
				inference.WithWorkers(a.cfg.Predict.Workers),
				inference.WithPredictorLogger(a.logger),
			)
			if err != nil {
				return err
			}
			results, err := predictor.Predict(cmd.Context(), rows)
			if err != nil {
				return err
			}
			if err := records.WriteResultsFile(output, results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d predictions to %s\n", len(results), output)

			if a.cfg.Data.ResultDSN == "" {
				return nil
			}
			store, err := db.NewResultStore(a.cfg.Data.ResultDSN)
			if err != nil {
				return err
			}
			defer store.Close()
			runID, err := store.SaveRun(cmd.Context(), a.cfg.Model.Path, path, results)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored run %s\n", runID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "results CSV (default data.resultPath)")
	return cmd
}
