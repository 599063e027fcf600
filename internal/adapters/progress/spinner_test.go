package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

func TestSpinnerProgressReporter_Stages(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := context.Background()
	var out bytes.Buffer
	r := NewSpinnerProgressReporter(&out)

	r.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageSubmitting, Message: "Submitting"})
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageConfirming, Message: "Waiting"})
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageCompleted, Message: "Delegation confirmed"})

	lines := out.String()
	assert.Contains(t, lines, "● Submitting")
	assert.Contains(t, lines, "✓ Submitted")
	assert.Contains(t, lines, "✓ Confirmed")
	assert.Contains(t, lines, "→ ✓ Completed\n")
}

func TestSpinnerProgressReporter_Failure(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := context.Background()
	var out bytes.Buffer
	r := NewSpinnerProgressReporter(&out)

	r.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageSubmitting})
	out.Reset()
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: usecase.StageFailed, Message: "Delegation was not submitted"})

	assert.Contains(t, out.String(), "✗ Submitting")
	assert.NotContains(t, out.String(), "Submitted")

	out.Reset()
	r.Error("boom")
	r.Info("hello")
	assert.Equal(t, "boom\nhello\n", out.String())
}

func TestNewProgressSink(t *testing.T) {
	assert.IsType(t, usecase.NopProgress{}, NewProgressSink(&config.RuntimeConfig{JSON: true}))
	assert.IsType(t, usecase.NopProgress{}, NewProgressSink(&config.RuntimeConfig{NonInteractive: true}))
	assert.IsType(t, &SpinnerProgressReporter{}, NewProgressSink(&config.RuntimeConfig{}))
}
