package gate

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func singleFace() provider.Detection {
	return provider.Detection{
		FaceCount: 1,
		Box:       &domain.BoundingBox{X: 10, Y: 10, Width: 100, Height: 100},
	}
}

func TestGate_ReadyOnNthConsecutiveFrame(t *testing.T) {
	g := New(3)
	frame := []byte("frame")

	state, capture := g.Observe(frame, singleFace())
	assert.Equal(t, StateAccumulating, state)
	assert.Nil(t, capture)

	state, capture = g.Observe(frame, singleFace())
	assert.Equal(t, StateAccumulating, state)
	assert.Nil(t, capture)

	state, capture = g.Observe(frame, singleFace())
	assert.Equal(t, StateReady, state)
	require.NotNil(t, capture)
	assert.Equal(t, frame, capture.Frame)
	assert.Equal(t, 3, capture.HeldFrames)
	assert.Equal(t, 100.0, capture.Box.Width)
}

func TestGate_GapResetsCounter(t *testing.T) {
	tests := []struct {
		name     string
		breaking provider.Detection
	}{
		{name: "no face", breaking: provider.Detection{FaceCount: 0}},
		{name: "two faces", breaking: provider.Detection{FaceCount: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(3)
			frame := []byte("frame")

			g.Observe(frame, singleFace())
			g.Observe(frame, singleFace())
			assert.Equal(t, 2, g.Held())

			state, capture := g.Observe(frame, tt.breaking)
			assert.Equal(t, StateReset, state)
			assert.Nil(t, capture)
			assert.Equal(t, 0, g.Held())

			// The run must restart from scratch, not resume.
			state, _ = g.Observe(frame, singleFace())
			assert.Equal(t, StateAccumulating, state)
		})
	}
}

func TestGate_FiresOncePerRun(t *testing.T) {
	g := New(2)
	frame := []byte("frame")

	g.Observe(frame, singleFace())
	state, capture := g.Observe(frame, singleFace())
	assert.Equal(t, StateReady, state)
	require.NotNil(t, capture)

	// The frame right after a ready starts a fresh run.
	state, capture = g.Observe(frame, singleFace())
	assert.Equal(t, StateAccumulating, state)
	assert.Nil(t, capture)

	state, capture = g.Observe(frame, singleFace())
	assert.Equal(t, StateReady, state)
	require.NotNil(t, capture)
	assert.Equal(t, 2, capture.HeldFrames)
}

func TestGate_RequiredOneFiresImmediately(t *testing.T) {
	g := New(1)

	state, capture := g.Observe([]byte("frame"), singleFace())
	assert.Equal(t, StateReady, state)
	require.NotNil(t, capture)
	assert.Equal(t, 1, capture.HeldFrames)
}

func TestGate_InvalidRequiredFallsBackToDefault(t *testing.T) {
	g := New(0)
	assert.Equal(t, DefaultRequiredStable, g.required)
}

func TestGate_ClockStampsCapture(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	g := New(1, WithClock(func() time.Time { return fixed }))

	_, capture := g.Observe([]byte("frame"), singleFace())
	require.NotNil(t, capture)
	assert.Equal(t, fixed, capture.CapturedAt)
}

func TestRunner_EmitsCapturesUntilStreamCloses(t *testing.T) {
	frame := mock.ValidFrame()
	source := mock.NewFrameSource(frame, frame, frame, frame)
	detector := mock.New()

	r := NewRunner(source, detector, New(2), testLogger())

	var captures []*domain.StableCapture
	err := r.Run(context.Background(), func(_ context.Context, c *domain.StableCapture) error {
		captures = append(captures, c)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, captures, 2)
	assert.Equal(t, 2, captures[0].HeldFrames)
}

func TestRunner_ContextCancelStops(t *testing.T) {
	source := mock.NewFrameSource(mock.ValidFrame())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(source, mock.New(), New(2), testLogger())
	err := r.Run(ctx, func(context.Context, *domain.StableCapture) error {
		t.Fatal("handler must not run after cancel")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
