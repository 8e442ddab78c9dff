package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/run-ticker/internal/console"
	"github.com/ensigniasec/run-ticker/internal/insights"
	"github.com/ensigniasec/run-ticker/internal/menu"
	"github.com/ensigniasec/run-ticker/internal/report"
	"github.com/ensigniasec/run-ticker/internal/scheduler"
	"github.com/ensigniasec/run-ticker/internal/settings"
	"github.com/ensigniasec/run-ticker/internal/tracker"
	"github.com/ensigniasec/run-ticker/internal/watcher"
)

const exitMessage = "Exiting application..."

// runTracker starts the interactive market view: banner, refresh timer, an immediate first
// refresh and then the key watcher until the user quits.
func runTracker(cmd *cobra.Command, _ []string) error {
	s, err := settings.New(initial)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	con, err := console.Open(os.Stdin)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer con.Close()
	if !con.IsTerminal() {
		logrus.Debug("stdin is not a terminal; keys are read line by line")
	}
	out := con.Writer(cmd.OutOrStdout())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	timer := scheduler.NewTimer()
	defer timer.Stop()

	// The settings menu blocks on line input in cooked mode, where Ctrl-C arrives as SIGINT.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		sig := <-signals
		logrus.Debugf("received %s", sig)
		cancel()
		timer.Stop()
		_ = con.Close()
		fmt.Fprintln(out, "\n"+exitMessage)
		os.Exit(0)
	}()

	report.Banner(out, s.Snapshot())

	job := tracker.New(s, client, catalog, insights.NewEngine(client), out)
	if err := timer.Start(s.Snapshot().Interval, func() { job.Run(ctx, tracker.TriggerTimer) }); err != nil {
		return fmt.Errorf("start refresh timer: %w", err)
	}
	job.Run(ctx, tracker.TriggerStartup)

	m := menu.New(s, con.Reader(), out)
	w := watcher.New(con, m, timer, s, func(ctx context.Context) { job.Run(ctx, tracker.TriggerMenu) })
	return finish(w.Run(ctx), timer, out)
}

// finish stops the timer and maps the watcher's exit reason to the command result.
func finish(err error, timer *scheduler.Timer, out io.Writer) error {
	timer.Stop()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, watcher.ErrInterrupted), errors.Is(err, context.Canceled):
		fmt.Fprintln(out, "\n"+exitMessage)
		return nil
	default:
		return err
	}
}
