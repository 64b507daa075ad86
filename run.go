package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"clipreplace/internal/clipboard"
	"clipreplace/internal/database"
	"clipreplace/internal/replace"
)

func newRunCmd(opts *rootOpts) *cobra.Command {
	var (
		flags    tableFlags
		interval time.Duration
		backend  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Monitor the clipboard without opening a window",
		Long: `Run polls the clipboard and rewrites it with the given pairs until
interrupted (Ctrl+C). A clipboard failure ends the run with an error.`,
		Example: `  clipreplace run -t pairs.csv
  clipreplace run -p colour=color -p teh=the`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			if cmd.Flags().Changed("interval") {
				if interval < time.Millisecond {
					return errors.Errorf("%w: --interval must be at least 1ms, got %s", clipboard.ErrInvalidInterval, interval)
				}
				cfg.MonitorInterval = int(interval / time.Millisecond)
			}
			if cmd.Flags().Changed("backend") {
				cfg.ClipboardBackend = backend
			}

			table, err := flags.table(cfg.MaxPairs)
			if err != nil {
				return err
			}

			b, err := newBackend(cfg.ClipboardBackend)
			if err != nil {
				return err
			}

			var recorder clipboard.Recorder
			if cfg.RecordHistory {
				repo, err := database.NewRepository(filepath.Join(filepath.Dir(opts.configPath), "history.db"))
				if err != nil {
					zerolog.Ctx(cmd.Context()).Warn().Err(err).Msg("history disabled")
				} else {
					defer repo.Close()
					recorder = repo
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			monitor := clipboard.NewMonitor(b, cfg.Interval(), recorder)
			return runMonitor(ctx, monitor, table, cmd.OutOrStdout())
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "poll interval")
	cmd.Flags().StringVar(&backend, "backend", clipboard.BackendSystem, "clipboard backend (system, atotto)")

	return cmd
}

// runMonitor runs one session until ctx is done or the clipboard fails.
func runMonitor(ctx context.Context, monitor *clipboard.Monitor, table *replace.Table, out io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)

	if err := monitor.Start(gctx, table); err != nil {
		return err
	}

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-monitor.EventChannel():
				printEvent(out, ev)
				if ev.Type == clipboard.EventError {
					return ev.Error
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		monitor.Stop()
		return nil
	})

	err := g.Wait()

	for {
		select {
		case ev := <-monitor.EventChannel():
			printEvent(out, ev)
		default:
			return err
		}
	}
}

func printEvent(out io.Writer, ev clipboard.MonitorEvent) {
	stamp := ev.Time.Format("15:04:05")
	switch ev.Type {
	case clipboard.EventStarted:
		fmt.Fprintf(out, "%s %s\n", stamp, color.GreenString("monitoring started"))
	case clipboard.EventReplaced:
		fmt.Fprintf(out, "%s %s %d match(es) %q -> %q\n", stamp, color.CyanString("replaced"),
			ev.Result.Replacements, ev.Result.Original, ev.Result.Text)
	case clipboard.EventError:
		fmt.Fprintf(out, "%s %s %v\n", stamp, color.RedString("error"), ev.Error)
	case clipboard.EventStopped:
		fmt.Fprintf(out, "%s %s\n", stamp, color.YellowString("monitoring stopped"))
	}
}
