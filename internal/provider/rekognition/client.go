package rekognition

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// RekognitionAPI defines the subset of the AWS Rekognition client used by
// this package. It exists so tests can substitute a mock.
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Client wraps the AWS Rekognition client
type Client struct {
	rekognition RekognitionAPI
	config      Config
}

// NewClient creates a new Rekognition client with the provided configuration.
// It uses the AWS default credential chain to authenticate.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		rekognition: rekognition.NewFromConfig(awsCfg),
		config:      cfg,
	}, nil
}
