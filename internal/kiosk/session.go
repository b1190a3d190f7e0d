package kiosk

import (
	"context"
	"errors"
	"log/slog"

	"github.com/muralikrishna-27/aeroface-rec/internal/audit"
	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/gate"
	"github.com/muralikrishna-27/aeroface-rec/internal/match"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
	"github.com/muralikrishna-27/aeroface-rec/internal/repository"
	"github.com/muralikrishna-27/aeroface-rec/internal/service"
	"github.com/muralikrishna-27/aeroface-rec/internal/ws"
)

// Config wires a kiosk session.
type Config struct {
	KioskID     string
	Source      provider.FrameSource
	Detector    provider.Detector
	Embedder    provider.Embedder
	Registry    repository.RegistryRepositoryInterface
	Resolver    service.AttendanceResolver
	Limiter     service.DeniedLimiter
	Auditor     audit.Logger
	Broadcaster service.Broadcaster

	// RequiredStableFrames is how many consecutive single-face frames the
	// gate demands before it releases a capture.
	RequiredStableFrames int
	Match                match.Config
	DeniedLimit          int

	// OnResolution, when set, receives every display payload the session
	// produces. The kiosk binary uses it to drive the local screen.
	OnResolution func(domain.Resolution)
}

// Session runs the continuous kiosk pipeline: frames flow through the
// stabilization gate, stable captures are embedded and matched against the
// registry, and each decision is resolved into an attendance transition.
//
// The match window accumulates across captures so consecutive looks at the
// same subject smooth each other out; it is cleared whenever a decision is
// accepted or the input turns out to be unusable.
type Session struct {
	cfg    Config
	runner *gate.Runner
	engine *match.Engine
	logger *slog.Logger
}

func NewSession(cfg Config, logger *slog.Logger) *Session {
	g := gate.New(cfg.RequiredStableFrames)
	return &Session{
		cfg:    cfg,
		runner: gate.NewRunner(cfg.Source, cfg.Detector, g, logger),
		engine: match.NewEngine(cfg.Match),
		logger: logger.With(slog.String("kiosk_id", cfg.KioskID)),
	}
}

// Run consumes the frame source until it closes or the context is cancelled.
// Per-capture failures are logged and skipped; a kiosk must keep watching the
// camera even when a collaborator hiccups.
func (s *Session) Run(ctx context.Context) error {
	return s.runner.Run(ctx, s.handleCapture)
}

// Reset clears the match window, e.g. when the operator forces a new session.
func (s *Session) Reset() {
	s.engine.Reset()
}

func (s *Session) handleCapture(ctx context.Context, capture *domain.StableCapture) error {
	embedding, err := s.cfg.Embedder.Embed(ctx, capture.Frame)
	if err != nil {
		s.logger.Warn("embedding failed, capture dropped", slog.String("error", err.Error()))
		return nil
	}

	if err := s.engine.AddSample(embedding); err != nil {
		s.engine.Reset()
		s.resolve(ctx, domain.MatchResult{Reason: domain.DenialInvalidInput})
		return nil
	}

	entries, err := s.cfg.Registry.FetchAll(ctx)
	if err != nil {
		s.logger.Error("registry load failed, capture dropped", slog.String("error", err.Error()))
		return nil
	}

	result, err := s.engine.Match(entries)
	if err != nil && result.Reason == domain.DenialNone {
		s.logger.Error("match failed, capture dropped", slog.String("error", err.Error()))
		return nil
	}

	s.resolve(ctx, result)

	if result.Accepted {
		// The subject is done with the kiosk; the next capture starts a
		// fresh window.
		s.engine.Reset()
	}
	return nil
}

func (s *Session) resolve(ctx context.Context, result domain.MatchResult) {
	resolution, err := s.cfg.Resolver.Resolve(ctx, result)
	if err != nil {
		if errors.Is(err, domain.ErrCheckinConflict) {
			s.logger.Warn("lost check-in race, another kiosk already opened the visit")
			return
		}
		s.logger.Error("attendance transition failed", slog.String("error", err.Error()))
		return
	}

	s.publish(ctx, result, resolution)
}

func (s *Session) publish(ctx context.Context, result domain.MatchResult, resolution domain.Resolution) {
	event := audit.Event{
		KioskID: s.cfg.KioskID,
		Reason:  string(result.Reason),
		Score:   result.Score,
		Success: result.Accepted,
	}
	if result.Identity != nil {
		event.Identity = *result.Identity
	}

	var wsType ws.EventType
	switch resolution.Event {
	case domain.EventCheckIn:
		event.EventType = audit.EventCheckIn
		wsType = ws.EventCheckIn
	case domain.EventCheckOut:
		event.EventType = audit.EventCheckOut
		wsType = ws.EventCheckOut
	case domain.EventRecentCheckin:
		event.EventType = audit.EventAccessGranted
		wsType = ws.EventRecentCheckin
	default:
		event.EventType = audit.EventAccessDenied
		wsType = ws.EventAccessDenied
	}

	_ = s.cfg.Auditor.Log(ctx, event)
	s.cfg.Broadcaster.BroadcastToKiosk(s.cfg.KioskID, wsType, resolution)

	if !result.Accepted {
		if err := s.cfg.Limiter.RecordDenied(ctx, s.cfg.KioskID, s.cfg.DeniedLimit); err != nil {
			if errors.Is(err, domain.ErrRateLimitExceeded) {
				s.logger.Warn("denied-attempt limit exceeded for this kiosk")
			} else {
				s.logger.Warn("denied-attempt counter update failed", slog.String("error", err.Error()))
			}
		}
	}

	if s.cfg.OnResolution != nil {
		s.cfg.OnResolution(resolution)
	}
}
