package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

func newApplyCmd(opts *rootOpts) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Rewrite stdin with the pairs and print the result",
		Example: `  echo "teh colour" | clipreplace apply -p teh=the -p colour=color`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.table(opts.config.MaxPairs)
			if err != nil {
				return err
			}

			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Errorf("reading input: %w", err)
			}

			res := table.Apply(string(input))
			zerolog.Ctx(cmd.Context()).Debug().
				Int("replacements", res.Replacements).
				Bool("changed", res.Changed()).
				Msg("input rewritten")

			if _, err := io.WriteString(cmd.OutOrStdout(), res.Text); err != nil {
				return errors.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
