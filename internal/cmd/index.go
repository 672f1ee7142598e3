package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/engine"
	"github.com/quantmind-br/appseek/internal/paths"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ErrNoMatch is returned by commands that found nothing to print
var ErrNoMatch = errors.New("no matching entries")

const spinnerInterval = 100 * time.Millisecond

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return core.ExitSuccess
	case errors.Is(err, ErrNoMatch):
		return core.ExitNoMatch
	case errors.Is(err, context.Canceled), errors.Is(err, ui.ErrCancelled):
		return core.ExitInterrupted
	default:
		return core.ExitGeneral
	}
}

// newEngine builds an engine over the host filesystem. Live discovery is
// only enabled when the caller keeps running after the initial walk.
func newEngine(cfg *config.Config, log *zerolog.Logger, live bool) *engine.Engine {
	opts := engine.NewOptions(cfg, paths.NewResolver(cfg))
	opts.Watch = opts.Watch && live
	return engine.New(afero.NewOsFs(), opts, log)
}

// startIndexed starts eng and blocks until the initial walk has been
// processed, drawing a spinner on w while it runs
func startIndexed(ctx context.Context, eng *engine.Engine, w io.Writer, showProgress bool) error {
	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	bar := ui.NewIndeterminateProgressBar(w, "Indexing", showProgress)
	done := make(chan error, 1)
	go func() {
		done <- eng.WaitIndexed(ctx)
	}()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			_ = bar.Finish()
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			return nil
		case <-ticker.C:
			bar.Describe(fmt.Sprintf("Indexing (%d entries)", eng.Caches().Len()))
			_ = bar.Add(1)
		}
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
