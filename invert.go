package main

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/replace"
	"clipreplace/internal/tablefile"
)

func newInvertCmd(opts *rootOpts) *cobra.Command {
	var (
		flags  tableFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "invert",
		Short: "Swap the pattern and replacement columns of a table",
		Example: `  clipreplace invert -t pairs.csv -o reversed.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := flags.collect(opts.config.MaxPairs)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return errors.New("nothing to invert: pass --table or --pair")
			}

			replace.Invert(pairs)

			if output == "" {
				return tablefile.Write(cmd.OutOrStdout(), pairs)
			}
			return tablefile.Save(output, pairs)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the inverted table here instead of stdout")

	return cmd
}
