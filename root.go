package main

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/app"
	"clipreplace/internal/clipboard"
	"clipreplace/internal/config"
	"clipreplace/internal/replace"
	"clipreplace/internal/tablefile"
)

// newBackend is swapped out in tests.
var newBackend = clipboard.NewBackend

type rootOpts struct {
	configPath string
	debug      bool
	config     *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "clipreplace",
		Short: "Rewrite clipboard text with literal find/replace pairs",
		Long: `clipreplace watches the clipboard and rewrites copied text by applying
an ordered list of literal find/replace pairs. Each pair sees the output
of the pairs before it.

Without a subcommand the desktop window is opened.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewClipReplaceApp(cmd.Context(), opts.configPath, opts.config)
			if err != nil {
				return err
			}
			a.ShowAndRun()
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default ~/.clipreplace/config.json)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(opts),
		newApplyCmd(opts),
		newInvertCmd(opts),
	)

	return cmd
}

// setup loads the config and sets the logger level on the command context.
// The window opens with defaults when the config cannot be read. Headless
// commands fail instead.
func (o *rootOpts) setup(cmd *cobra.Command) error {
	if o.configPath == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		o.configPath = filepath.Join(dir, "config.json")
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		if cmd.HasParent() {
			return errors.Errorf("loading config: %w", err)
		}
		zerolog.Ctx(cmd.Context()).Warn().Err(err).Str("path", o.configPath).Msg("using default configuration")
		cfg = config.Default()
	}
	o.config = cfg

	level := cfg.Level()
	if o.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.Ctx(cmd.Context()).Level(level)
	cmd.SetContext(logger.WithContext(cmd.Context()))

	return nil
}

// tableFlags are the pair sources shared by the headless commands.
type tableFlags struct {
	tablePath string
	pairs     []string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.tablePath, "table", "t", "", "CSV file with TextoOriginal,TextoReemplazo rows")
	cmd.Flags().StringArrayVarP(&f.pairs, "pair", "p", nil, "replacement pair as from=to (repeatable, applied after the table)")
}

// collect reads the table file first, then the --pair flags, in order.
func (f *tableFlags) collect(capacity int) ([]replace.Pair, error) {
	var pairs []replace.Pair

	if f.tablePath != "" {
		loaded, err := tablefile.Load(f.tablePath, capacity)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, loaded...)
	}

	for _, raw := range f.pairs {
		p, err := replace.ParsePair(raw)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}

	return pairs, nil
}

func (f *tableFlags) table(capacity int) (*replace.Table, error) {
	pairs, err := f.collect(capacity)
	if err != nil {
		return nil, err
	}
	return replace.BuildTable(pairs, capacity)
}
