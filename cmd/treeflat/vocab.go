package main

import (
	"github.com/spf13/cobra"
)

func newVocabCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "Print the active vocabulary as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab, err := g.vocabulary()
			if err != nil {
				return err
			}
			data, err := vocab.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
