package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// SpinnerProgressReporter shows delegation progress with a spinner
type SpinnerProgressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
	stages  []stageInfo
}

type stageInfo struct {
	Stage     string
	StartTime time.Time
	EndTime   time.Time
	Status    string
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		out:     out,
		spinner: s,
	}
}

// NewProgressSink picks the spinner for terminals and no output otherwise
func NewProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON || cfg.NonInteractive {
		return usecase.NopProgress{}
	}
	return NewSpinnerProgressReporter(os.Stderr)
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Stage {
	case usecase.StageSubmitting:
		r.stages = nil
		r.beginStage(event.Stage)
	case usecase.StageConfirming:
		r.completeCurrentStage("completed")
		r.beginStage(event.Stage)
	case usecase.StageCompleted:
		r.completeCurrentStage("completed")
		r.beginStage(event.Stage)
		r.completeCurrentStage("completed")
	case usecase.StageFailed:
		r.completeCurrentStage("failed")
	}

	if event.Spinner {
		r.spinner.Suffix = " " + r.display() + "  " + event.Message
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		return
	}

	if r.spinner.Active() {
		r.spinner.Stop()
	}
	if len(r.stages) > 0 {
		fmt.Fprintln(r.out, r.display())
	} else if event.Message != "" {
		color.New(color.Faint).Fprintln(r.out, event.Message)
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.printPaused(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.printPaused(color.New(color.FgRed), message)
}

func (r *SpinnerProgressReporter) printPaused(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerProgressReporter) beginStage(stage string) {
	r.stages = append(r.stages, stageInfo{
		Stage:     stage,
		StartTime: time.Now(),
		Status:    "running",
	})
}

// completeCurrentStage closes the running stage with status
func (r *SpinnerProgressReporter) completeCurrentStage(status string) {
	if len(r.stages) == 0 {
		return
	}
	idx := len(r.stages) - 1
	if r.stages[idx].Status != "running" {
		return
	}
	r.stages[idx].EndTime = time.Now()
	r.stages[idx].Status = status
}

// display renders the stage trail, e.g. "✓ Submitted (1.2s) → ● Confirming (4s)"
func (r *SpinnerProgressReporter) display() string {
	var out string
	for i, stage := range r.stages {
		var icon string
		var stageColor *color.Color

		switch stage.Status {
		case "completed":
			icon = "✓"
			stageColor = color.New(color.FgGreen)
		case "failed":
			icon = "✗"
			stageColor = color.New(color.FgRed)
		default:
			icon = "●"
			stageColor = color.New(color.FgYellow)
		}

		duration := ""
		if !stage.EndTime.IsZero() && stage.Stage != usecase.StageCompleted {
			duration = fmt.Sprintf(" (%s)", stage.EndTime.Sub(stage.StartTime).Round(100*time.Millisecond))
		} else if stage.Status == "running" {
			duration = fmt.Sprintf(" (%s)", time.Since(stage.StartTime).Round(time.Second))
		}

		if i > 0 {
			out += " → "
		}
		out += fmt.Sprintf("%s %s%s", icon, stageColor.Sprint(stageLabel(stage)), duration)
	}
	return out
}

func stageLabel(stage stageInfo) string {
	switch stage.Stage {
	case usecase.StageSubmitting:
		if stage.Status == "completed" {
			return "Submitted"
		}
		return "Submitting"
	case usecase.StageConfirming:
		if stage.Status == "completed" {
			return "Confirmed"
		}
		return "Confirming"
	case usecase.StageCompleted:
		return "Completed"
	}
	return stage.Stage
}

var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
