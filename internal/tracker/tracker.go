// Package tracker implements the refresh-and-display job shared by the refresh timer and the
// input watcher.
package tracker

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-ticker/internal/alert"
	"github.com/ensigniasec/run-ticker/internal/insights"
	"github.com/ensigniasec/run-ticker/internal/market"
	"github.com/ensigniasec/run-ticker/internal/report"
	"github.com/ensigniasec/run-ticker/internal/settings"
)

// Trigger names what started a refresh.
type Trigger int

const (
	TriggerStartup Trigger = iota
	TriggerTimer
	TriggerMenu
)

func (t Trigger) String() string {
	switch t {
	case TriggerStartup:
		return "startup"
	case TriggerTimer:
		return "timer"
	case TriggerMenu:
		return "menu"
	default:
		return "unknown"
	}
}

// Analyzer computes AI insights for a set of quotes.
type Analyzer interface {
	Analyze(ctx context.Context, quotes []market.Quote) []insights.Insight
}

// Job fetches the catalog, renders the market view and prints alerts and insights.
type Job struct {
	settings *settings.Settings
	quotes   market.QuoteSource
	catalog  market.Catalog
	analyzer Analyzer
	out      io.Writer

	// mu serializes whole renders so timer and menu runs never interleave.
	mu sync.Mutex
}

// New returns a Job. analyzer may be nil, in which case AI insights are never shown.
func New(s *settings.Settings, quotes market.QuoteSource, catalog market.Catalog, analyzer Analyzer, out io.Writer) *Job {
	return &Job{
		settings: s,
		quotes:   quotes,
		catalog:  catalog,
		analyzer: analyzer,
		out:      out,
	}
}

// Run performs one refresh. Timer-triggered runs are skipped while the settings menu owns
// the terminal, including when the menu opens while quotes or insights are being fetched.
// It reports whether the full view was rendered.
func (j *Job) Run(ctx context.Context, trigger Trigger) bool {
	log := logrus.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"trigger": trigger.String(),
	})
	if j.preempted(trigger) {
		log.Debug("settings menu active; skipping refresh")
		return false
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	v := j.settings.Snapshot()
	log.WithFields(logrus.Fields{
		"threshold": v.Threshold,
		"interval":  v.Interval,
		"ai":        v.AIEnabled,
	}).Debug("refreshing market view")

	quotes := market.FetchAll(ctx, j.quotes, j.catalog)
	log.Debugf("fetched %d of %d indices", len(quotes), len(j.catalog.Indices))
	if j.preempted(trigger) {
		log.Debug("settings menu opened during fetch; discarding refresh")
		return false
	}

	report.ClearScreen(j.out)
	report.Header(j.out, v)
	report.Indices(j.out, quotes)

	alerts := alert.Check(quotes, v.Threshold)
	if len(alerts) > 0 {
		fmt.Fprintln(j.out)
		if err := alert.Print(j.out, alerts); err != nil {
			log.Warnf("could not print alerts: %v", err)
		}
	}

	if v.AIEnabled && j.analyzer != nil && len(quotes) > 0 {
		fmt.Fprintln(j.out)
		fmt.Fprintln(j.out, report.HintStyle.Render("Generating AI insights (this may take a moment)..."))
		in := j.analyzer.Analyze(ctx, quotes)
		if j.preempted(trigger) {
			log.Debug("settings menu opened during analysis; discarding insights")
			return false
		}
		report.Insights(j.out, in)
		report.Summary(j.out, insights.Summarize(in))
	}
	return true
}

// preempted reports whether a timer run must yield the terminal to the settings menu.
func (j *Job) preempted(trigger Trigger) bool {
	return trigger == TriggerTimer && j.settings.MenuActive()
}
