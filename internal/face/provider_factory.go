package face

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/muralikrishna-27/aeroface-rec/internal/config"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider/deepface"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider/mock"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider/rekognition"
)

// ProviderType defines supported face pipeline provider types
type ProviderType string

const (
	// ProviderTypeMock is the in-process provider (deterministic, for dev/test)
	ProviderTypeMock ProviderType = "mock"
	// ProviderTypeDeepFace is the DeepFace provider (local service)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition uses AWS Rekognition for detection; embeddings
	// still come from DeepFace because Rekognition never exposes raw vectors
	ProviderTypeRekognition ProviderType = "rekognition"
)

// NewProviders creates the detector and embedder pair based on configuration.
//
// Environment variables:
//   - EMBEDDER_TYPE: "mock", "deepface" or "rekognition" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func NewProviders(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Detector, provider.Embedder, error) {
	providerType := ProviderType(cfg.FaceProvider)

	switch providerType {
	case ProviderTypeMock:
		p := mock.New()
		return p, p, nil

	case ProviderTypeRekognition:
		detector, err := createRekognitionDetector(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return detector, createDeepFaceProvider(cfg), nil

	case ProviderTypeDeepFace, "":
		// Default to DeepFace for dev/test environments
		p := createDeepFaceProvider(cfg)
		return p, p, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.FaceProvider, ProviderTypeMock, ProviderTypeDeepFace, ProviderTypeRekognition)
	}
}

// createRekognitionDetector creates an AWS Rekognition detection adapter
func createRekognitionDetector(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Detector, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	client, err := rekognition.NewClient(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return rekognition.NewProvider(client, logger), nil
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}

	return deepface.NewProvider(deepfaceConfig)
}
