package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muralikrishna-27/aeroface-rec/internal/attendance"
	"github.com/muralikrishna-27/aeroface-rec/internal/audit"
	"github.com/muralikrishna-27/aeroface-rec/internal/config"
	"github.com/muralikrishna-27/aeroface-rec/internal/database"
	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/face"
	"github.com/muralikrishna-27/aeroface-rec/internal/kiosk"
	"github.com/muralikrishna-27/aeroface-rec/internal/match"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider/mock"
	"github.com/muralikrishna-27/aeroface-rec/internal/ratelimit"
	"github.com/muralikrishna-27/aeroface-rec/internal/repository"
	"github.com/muralikrishna-27/aeroface-rec/internal/ws"
)

// nopBroadcaster drops display events; the standalone kiosk binary prints
// resolutions to stdout instead of pushing them over WebSocket.
type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToKiosk(kioskID string, eventType ws.EventType, data interface{}) {}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	kioskID := flag.String("kiosk", ws.DefaultKioskID, "Kiosk identifier for attendance and rate limiting")
	framePath := flag.String("frame", "", "Path to an image file to replay as the camera feed (default: synthetic frame)")
	loops := flag.Int("loops", 1, "How many stable holds to simulate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	detector, embedder, err := face.NewProviders(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create face providers: %w", err)
	}

	frame := mock.ValidFrame()
	if *framePath != "" {
		frame, err = os.ReadFile(*framePath)
		if err != nil {
			return fmt.Errorf("failed to read frame file: %w", err)
		}
	}

	// Each loop replays enough identical frames to satisfy the gate once.
	total := cfg.RequiredStableFrames * (*loops)
	frames := make([][]byte, 0, total)
	for i := 0; i < *loops; i++ {
		for j := 0; j < cfg.RequiredStableFrames; j++ {
			frames = append(frames, frame)
		}
	}

	var source provider.FrameSource = mock.NewFrameSource(frames...)

	machine := attendance.NewMachine(
		repository.NewAttendanceRepository(pool),
		logger,
		attendance.WithMinVisit(cfg.MinVisit()),
	)

	session := kiosk.NewSession(kiosk.Config{
		KioskID:  *kioskID,
		Source:   source,
		Detector: detector,
		Embedder: embedder,
		Registry: repository.NewRegistryRepository(pool),
		Resolver: machine,
		Limiter: ratelimit.NewRateLimiter(
			pool,
			time.Duration(cfg.DeniedAttemptWindow)*time.Second,
		),
		Auditor:              audit.NewSlogLogger(logger),
		Broadcaster:          nopBroadcaster{},
		RequiredStableFrames: cfg.RequiredStableFrames,
		Match: match.Config{
			Threshold:  cfg.MatchThreshold,
			WindowSize: cfg.MatchWindowSize,
			Dimensions: cfg.EmbeddingDim,
		},
		DeniedLimit: cfg.DeniedAttemptLimit,
		OnResolution: func(r domain.Resolution) {
			payload, err := json.Marshal(r)
			if err != nil {
				logger.Error("failed to encode resolution", slog.Any("error", err))
				return
			}
			fmt.Println(string(payload))
		},
	}, logger)

	logger.Info("kiosk session starting",
		slog.String("kiosk_id", *kioskID),
		slog.Int("stable_frames", cfg.RequiredStableFrames),
	)

	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("kiosk session failed: %w", err)
	}

	logger.Info("frame stream ended, kiosk session complete")
	return nil
}
