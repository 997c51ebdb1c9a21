package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/embedding"

	"github.com/spf13/cobra"
)

func newVocabCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "vocab <prefix>",
		Short: "List words of the vector file that start with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wv, err := embedding.LoadWordVectorsFile(a.cfg.Embedding.Path, a.cfg.Embedding.Dims)
			if err != nil {
				return err
			}
			words := wv.WordsWithPrefix(args[0], limit)
			for _, w := range words {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			a.logger.Debug().Str("prefix", args[0]).Int("matches", len(words)).Int("vocabulary", wv.Len()).Msg("vocab lookup")
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of words (0 for all)")
	return cmd
}
