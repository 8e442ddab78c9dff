// Package menu implements the blocking, line-oriented settings menu.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-ticker/internal/report"
	"github.com/ensigniasec/run-ticker/internal/settings"
)

// Outcome is how a menu session ended.
type Outcome int

const (
	// OutcomeBusy means another session already owned the terminal; nothing was shown.
	OutcomeBusy Outcome = iota
	// OutcomeCommitted means the user applied the settings and returned to the market view.
	OutcomeCommitted
	// OutcomeQuit means the user asked to exit, or input ended.
	OutcomeQuit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBusy:
		return "busy"
	case OutcomeCommitted:
		return "committed"
	case OutcomeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

const (
	defaultErrorPause   = 1500 * time.Millisecond
	defaultSuccessPause = time.Second
)

// Menu owns the terminal while a session runs.
type Menu struct {
	settings *settings.Settings
	in       *bufio.Reader
	out      io.Writer

	errorPause   time.Duration
	successPause time.Duration
	sleep        func(time.Duration)
}

// Option mutates Menu configuration.
type Option func(*Menu)

// WithPauses sets how long messages stay visible after an error and after a success.
func WithPauses(onError, onSuccess time.Duration) Option {
	return func(m *Menu) {
		m.errorPause = onError
		m.successPause = onSuccess
	}
}

// New returns a Menu reading lines from in and rendering to out.
func New(s *settings.Settings, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		settings:     s,
		in:           bufio.NewReader(in),
		out:          out,
		errorPause:   defaultErrorPause,
		successPause: defaultSuccessPause,
		sleep:        time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run shows the menu until the user commits or quits. It returns OutcomeBusy immediately if a
// session is already active. End of input and context cancellation are treated as quit.
func (m *Menu) Run(ctx context.Context) Outcome {
	if !m.settings.BeginMenu() {
		logrus.Debug("settings menu already active")
		return OutcomeBusy
	}

	for {
		if ctx.Err() != nil {
			return m.quit()
		}
		m.render()
		choice, err := m.prompt("\nEnter your choice (1-5): ")
		if err != nil {
			return m.quit()
		}

		switch choice {
		case "1":
			if err := m.updateThreshold(); err != nil {
				return m.quit()
			}
		case "2":
			if err := m.updateInterval(); err != nil {
				return m.quit()
			}
		case "3":
			m.toggleAI()
		case "4":
			return m.commit()
		case "5":
			return m.quit()
		default:
			m.fail("Invalid choice. Please enter a number between 1 and 5.")
		}
	}
}

func (m *Menu) render() {
	v := m.settings.Snapshot()
	report.ClearScreen(m.out)
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, report.TitleStyle.Render("=== STOCK TRACKER SETTINGS ==="))
	fmt.Fprintf(m.out, "1. Alert Threshold: %s\n", report.ValueStyle.Render(report.Number(v.Threshold)+"%"))
	fmt.Fprintf(m.out, "2. Refresh Interval: %s\n", report.ValueStyle.Render(strconv.Itoa(v.Interval)+" minute(s)"))
	fmt.Fprintf(m.out, "3. AI Insights: %s\n", report.OnOff(v.AIEnabled, strconv.FormatBool(v.AIEnabled)))
	fmt.Fprintf(m.out, "4. %s\n", report.UpStyle.Render("Apply Changes & Return to Market View"))
	fmt.Fprintf(m.out, "5. %s\n", report.DownStyle.Render("Exit Application"))
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, report.HintStyle.Render("Press the number of the setting you want to change..."))
}

// prompt writes label and reads one trimmed line. A final unterminated line is still returned;
// io.EOF is reported only when nothing was read.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (m *Menu) updateThreshold() error {
	fmt.Fprintf(m.out, "\nCurrent alert threshold: %s%%\n", report.Number(m.settings.Snapshot().Threshold))
	raw, err := m.prompt("Enter new threshold (e.g., 2.5): ")
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		m.fail("Invalid input. Please enter a number.")
		return nil
	}
	if err := m.settings.SetThreshold(v); err != nil {
		logrus.Debugf("threshold rejected: %v", err)
		m.fail("Threshold must be a positive number.")
		return nil
	}
	m.succeed(fmt.Sprintf("Threshold updated to %s%%", report.Number(v)))
	return nil
}

func (m *Menu) updateInterval() error {
	fmt.Fprintf(m.out, "\nCurrent refresh interval: %d minute(s)\n", m.settings.Snapshot().Interval)
	raw, err := m.prompt("Enter new interval in minutes (e.g., 5): ")
	if err != nil {
		return err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		m.fail("Invalid input. Please enter a whole number.")
		return nil
	}
	if err := m.settings.SetInterval(v); err != nil {
		logrus.Debugf("interval rejected: %v", err)
		m.fail("Interval must be at least 1 minute.")
		return nil
	}
	m.succeed(fmt.Sprintf("Interval updated to %d minute(s)", v))
	return nil
}

func (m *Menu) toggleAI() {
	status := "disabled"
	if m.settings.ToggleAI() {
		status = "enabled"
	}
	m.succeed("AI insights " + status)
}

func (m *Menu) commit() Outcome {
	m.settings.EndMenu()
	m.settings.MarkChanged()
	fmt.Fprintln(m.out, report.SuccessStyle.Render("Applying changes and returning to market view..."))
	m.sleep(m.successPause)
	return OutcomeCommitted
}

func (m *Menu) quit() Outcome {
	m.settings.EndMenu()
	m.settings.RequestExit()
	fmt.Fprintln(m.out, report.ErrorStyle.Render("Exiting application..."))
	return OutcomeQuit
}

func (m *Menu) fail(msg string) {
	fmt.Fprintln(m.out, report.ErrorStyle.Render(msg))
	m.sleep(m.errorPause)
}

func (m *Menu) succeed(msg string) {
	fmt.Fprintln(m.out, report.SuccessStyle.Render(msg))
	m.sleep(m.successPause)
}
