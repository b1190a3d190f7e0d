package gate

import (
	"time"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
)

// State describes what the gate did with the frame it was just shown.
type State string

const (
	// StateAccumulating means the frame held exactly one face and the
	// consecutive counter advanced, but the hold is not long enough yet.
	StateAccumulating State = "accumulating"
	// StateReset means the frame broke the streak (no face, or more than
	// one) and the counter went back to zero.
	StateReset State = "reset"
	// StateReady means the frame completed the required consecutive run.
	// It is reported exactly once per run; the counter restarts from zero.
	StateReady State = "ready"
)

// DefaultRequiredStable is the consecutive single-face frame count needed
// before a capture is considered stable.
const DefaultRequiredStable = 25

// Gate is the stabilization gate: it admits a frame to the recognition
// pipeline only after a subject has held a single detectable face for a
// required number of consecutive frames. Not safe for concurrent use; one
// gate serves one camera stream.
type Gate struct {
	required int
	held     int
	now      func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// New creates a gate requiring the given number of consecutive single-face
// frames. Values below 1 fall back to DefaultRequiredStable.
func New(required int, opts ...Option) *Gate {
	if required < 1 {
		required = DefaultRequiredStable
	}
	g := &Gate{
		required: required,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Held returns the current consecutive single-face frame count.
func (g *Gate) Held() int {
	return g.held
}

// Reset clears the consecutive counter, for example when a session ends or
// the stream restarts.
func (g *Gate) Reset() {
	g.held = 0
}

// Observe feeds one frame's detection into the gate. When the observation
// completes the required run it returns StateReady and the stable capture
// built from that same frame; otherwise the capture is nil.
func (g *Gate) Observe(frame []byte, det provider.Detection) (State, *domain.StableCapture) {
	if det.FaceCount != 1 {
		g.held = 0
		return StateReset, nil
	}

	g.held++
	if g.held < g.required {
		return StateAccumulating, nil
	}

	capture := &domain.StableCapture{
		Frame:      frame,
		HeldFrames: g.held,
		CapturedAt: g.now(),
	}
	if det.Box != nil {
		capture.Box = *det.Box
	}
	g.held = 0
	return StateReady, capture
}
