package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/muralikrishna-27/aeroface-rec/internal/audit"
	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/match"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
	"github.com/muralikrishna-27/aeroface-rec/internal/repository"
	"github.com/muralikrishna-27/aeroface-rec/internal/ws"
)

// Broadcaster pushes display events to connected kiosk clients.
type Broadcaster interface {
	BroadcastToKiosk(kioskID string, eventType ws.EventType, data interface{})
}

// DeniedLimiter counts denied attempts per kiosk and reports when the
// configured limit is exceeded.
type DeniedLimiter interface {
	RecordDenied(ctx context.Context, kioskID string, limit int) error
}

// AttendanceResolver applies one match decision to the attendance state.
type AttendanceResolver interface {
	Resolve(ctx context.Context, result domain.MatchResult) (domain.Resolution, error)
}

// AccessService implements enrollment, one-shot verification and attendance
// lookups on top of the face registry.
type AccessService struct {
	registry       repository.RegistryRepositoryInterface
	attendanceRepo repository.AttendanceRepositoryInterface
	resolver       AttendanceResolver
	detector       provider.Detector
	embedder       provider.Embedder
	limiter        DeniedLimiter
	auditor        audit.Logger
	broadcaster    Broadcaster
	matchCfg       match.Config
	deniedLimit    int
	logger         *slog.Logger
}

func NewAccessService(
	registry repository.RegistryRepositoryInterface,
	attendanceRepo repository.AttendanceRepositoryInterface,
	resolver AttendanceResolver,
	detector provider.Detector,
	embedder provider.Embedder,
	limiter DeniedLimiter,
	auditor audit.Logger,
	broadcaster Broadcaster,
	matchCfg match.Config,
	deniedLimit int,
	logger *slog.Logger,
) *AccessService {
	return &AccessService{
		registry:       registry,
		attendanceRepo: attendanceRepo,
		resolver:       resolver,
		detector:       detector,
		embedder:       embedder,
		limiter:        limiter,
		auditor:        auditor,
		broadcaster:    broadcaster,
		matchCfg:       matchCfg,
		deniedLimit:    deniedLimit,
		logger:         logger,
	}
}

// VerifyResult is the outcome of a one-shot verification: the match decision
// plus the attendance transition it triggered.
type VerifyResult struct {
	Matched   bool                   `json:"matched"`
	Identity  string                 `json:"identity,omitempty"`
	Score     float64                `json:"score"`
	Reason    domain.DenialReason    `json:"reason,omitempty"`
	Event     domain.AttendanceEvent `json:"event"`
	Timestamp time.Time              `json:"timestamp"`
	Visit     *domain.AttendanceRow  `json:"visit,omitempty"`
}

// EnrollmentStatus reports whether an identity has a registered embedding.
type EnrollmentStatus struct {
	Identity   string    `json:"identity"`
	Registered bool      `json:"registered"`
	ModelName  string    `json:"model_name,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// AttendanceSummary is the derived attendance state for an identity.
type AttendanceSummary struct {
	Identity  string                  `json:"identity"`
	Status    domain.AttendanceStatus `json:"status"`
	LastVisit *domain.AttendanceRow   `json:"last_visit,omitempty"`
}

// Enroll registers an identity from one or more face images. Each image must
// contain exactly one face. With multiple images the embeddings are averaged
// element-wise and re-normalized before storage, which smooths per-shot noise.
// Re-enrolling an identity overwrites its previous embedding.
func (s *AccessService) Enroll(ctx context.Context, identity string, images [][]byte) (*domain.RegistryEntry, error) {
	if identity == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("identity is required"))
	}
	if len(images) == 0 {
		return nil, domain.ErrValidationFailed.WithError(errors.New("at least one image is required"))
	}

	samples := make([][]float64, 0, len(images))
	for i, image := range images {
		det, err := s.detector.Detect(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("detect face in image %d: %w", i, err)
		}
		if det.FaceCount == 0 {
			return nil, domain.ErrNoFaceDetected
		}
		if det.FaceCount > 1 {
			return nil, domain.ErrMultipleFaces
		}

		embedding, err := s.embedder.Embed(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("embed image %d: %w", i, err)
		}
		if len(embedding) != s.matchCfg.Dimensions {
			return nil, domain.ErrDimensionMismatch
		}
		normalized, err := match.Normalize(embedding)
		if err != nil {
			return nil, err
		}
		samples = append(samples, normalized)
	}

	// The mean of unit vectors is not a unit vector, so normalize again.
	combined, err := match.Normalize(match.Average(samples))
	if err != nil {
		return nil, err
	}

	entry := &domain.RegistryEntry{
		Identity:  identity,
		Embedding: combined,
		ModelName: s.embedder.ModelName(),
	}
	if err := s.registry.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("store embedding: %w", err)
	}

	s.logger.Info("identity enrolled",
		slog.String("identity", identity),
		slog.String("model", entry.ModelName),
		slog.Int("images", len(images)),
	)
	_ = s.auditor.Log(ctx, audit.Event{
		EventType: audit.EventFaceEnrolled,
		Identity:  identity,
		Success:   true,
		Metadata:  map[string]string{"model": entry.ModelName},
	})
	s.broadcaster.BroadcastToKiosk(ws.DefaultKioskID, ws.EventFaceEnrolled, entry)

	return entry, nil
}

// Verify runs a single image through the full recognition pipeline: detect,
// embed, match against every registered embedding, then apply the attendance
// transition. Match denials are a normal result, not an error; they are
// audited and counted against the kiosk's denied-attempt limit.
func (s *AccessService) Verify(ctx context.Context, kioskID string, image []byte) (*VerifyResult, error) {
	if kioskID == "" {
		kioskID = ws.DefaultKioskID
	}

	det, err := s.detector.Detect(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("detect face: %w", err)
	}
	if det.FaceCount == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	if det.FaceCount > 1 {
		return nil, domain.ErrMultipleFaces
	}

	embedding, err := s.embedder.Embed(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("embed face: %w", err)
	}

	engine := match.NewEngine(s.matchCfg)
	if err := engine.AddSample(embedding); err != nil {
		return nil, err
	}

	entries, err := s.registry.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	result, err := engine.Match(entries)
	if err != nil && !errors.Is(err, domain.ErrEmptyRegistry) {
		return nil, err
	}
	if errors.Is(err, domain.ErrEmptyRegistry) {
		// Nothing to match against. The engine already failed closed; keep
		// the denial flowing through the normal path so it is audited.
		s.logger.Warn("verification against empty registry", slog.String("kiosk_id", kioskID))
	}

	resolution, err := s.resolver.Resolve(ctx, result)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kioskID, result, resolution)

	if !result.Accepted {
		if err := s.limiter.RecordDenied(ctx, kioskID, s.deniedLimit); err != nil {
			if errors.Is(err, domain.ErrRateLimitExceeded) {
				return nil, err
			}
			s.logger.Warn("denied-attempt counter update failed",
				slog.String("kiosk_id", kioskID),
				slog.String("error", err.Error()),
			)
		}
	}

	verify := &VerifyResult{
		Matched:   result.Accepted,
		Score:     result.Score,
		Reason:    result.Reason,
		Event:     resolution.Event,
		Timestamp: resolution.Timestamp,
		Visit:     resolution.Row,
	}
	if result.Identity != nil {
		verify.Identity = *result.Identity
	}
	return verify, nil
}

// publish emits the audit record and the kiosk display event for one
// verification outcome. Both are fire-and-forget.
func (s *AccessService) publish(ctx context.Context, kioskID string, result domain.MatchResult, resolution domain.Resolution) {
	event := audit.Event{
		KioskID: kioskID,
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

	_ = s.auditor.Log(ctx, event)
	s.broadcaster.BroadcastToKiosk(kioskID, wsType, resolution)
}

// Status reports whether an identity has an enrolled embedding. A missing
// identity is a valid answer, not an error.
func (s *AccessService) Status(ctx context.Context, identity string) (*EnrollmentStatus, error) {
	entry, err := s.registry.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrFaceNotRegistered) {
			return &EnrollmentStatus{Identity: identity}, nil
		}
		return nil, fmt.Errorf("load registry entry: %w", err)
	}
	return &EnrollmentStatus{
		Identity:   entry.Identity,
		Registered: true,
		ModelName:  entry.ModelName,
		UpdatedAt:  entry.UpdatedAt,
	}, nil
}

// Delete removes an identity's embedding from the registry. Attendance
// history is kept; only the biometric template is erased.
func (s *AccessService) Delete(ctx context.Context, identity string) error {
	if err := s.registry.Delete(ctx, identity); err != nil {
		return err
	}

	s.logger.Info("identity deleted", slog.String("identity", identity))
	_ = s.auditor.Log(ctx, audit.Event{
		EventType: audit.EventFaceDeleted,
		Identity:  identity,
		Success:   true,
	})
	s.broadcaster.BroadcastToKiosk(ws.DefaultKioskID, ws.EventFaceDeleted, map[string]string{"identity": identity})
	return nil
}

// Attendance derives the current attendance state from the identity's most
// recent visit row.
func (s *AccessService) Attendance(ctx context.Context, identity string) (*AttendanceSummary, error) {
	if _, err := s.registry.GetByIdentity(ctx, identity); err != nil {
		return nil, err
	}

	latest, err := s.attendanceRepo.LatestVisit(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("load latest visit: %w", err)
	}
	return &AttendanceSummary{
		Identity:  identity,
		Status:    latest.Status(),
		LastVisit: latest,
	}, nil
}
