package rekognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
)

const (
	errCodeAccessDenied     = "AccessDeniedException"
	errCodeInvalidImage     = "InvalidImageFormatException"
	errCodeImageTooLarge    = "ImageTooLargeException"
	errCodeThrottling       = "ThrottlingException"
	errCodeProvisionedLimit = "ProvisionedThroughputExceededException"

	minImageSize = 64      // bytes, below this an image cannot hold a face
	maxImageSize = 5242880 // 5MB, Rekognition's byte payload limit
)

// Provider detects faces with the AWS Rekognition DetectFaces API. It only
// performs detection; Rekognition never exposes raw embeddings, so pairing it
// with a separate embedder is the caller's job.
type Provider struct {
	client *Client
	logger *slog.Logger
}

// NewProvider creates a Rekognition-backed detector
func NewProvider(client *Client, logger *slog.Logger) *Provider {
	return &Provider{
		client: client,
		logger: logger,
	}
}

var _ provider.Detector = (*Provider)(nil)

func validateImage(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// Detect counts the faces in a frame. The bounding box is populated only when
// exactly one face clears the configured confidence floor; its coordinates are
// ratios of the frame dimensions, as Rekognition reports them.
func (p *Provider) Detect(ctx context.Context, frame []byte) (provider.Detection, error) {
	if err := validateImage(frame); err != nil {
		return provider.Detection{}, domain.ErrInvalidImage.WithError(err)
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: frame,
		},
		Attributes: []types.Attribute{types.AttributeDefault},
	}

	output, err := p.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return provider.Detection{}, p.mapError(err)
	}

	var boxes []domain.BoundingBox
	for _, detail := range output.FaceDetails {
		if detail.Confidence != nil && float64(*detail.Confidence) < p.client.config.MinConfidence {
			continue
		}
		if detail.BoundingBox == nil {
			continue
		}
		boxes = append(boxes, domain.BoundingBox{
			X:      float64(*detail.BoundingBox.Left),
			Y:      float64(*detail.BoundingBox.Top),
			Width:  float64(*detail.BoundingBox.Width),
			Height: float64(*detail.BoundingBox.Height),
		})
	}

	detection := provider.Detection{FaceCount: len(boxes)}
	if len(boxes) == 1 {
		detection.Box = &boxes[0]
	}

	p.logger.Debug("rekognition detect",
		slog.Int("faces_count", detection.FaceCount),
		slog.Int("frame_size", len(frame)),
	)

	return detection, nil
}

func (p *Provider) mapError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return domain.ErrInternal.WithError(fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage()))
		case errCodeInvalidImage, errCodeImageTooLarge:
			return domain.ErrInvalidImage.WithError(fmt.Errorf("%w: %s", ErrInvalidImage, apiErr.ErrorMessage()))
		case errCodeThrottling, errCodeProvisionedLimit:
			return domain.ErrCollaboratorUnavailable.WithError(fmt.Errorf("%w: %s", ErrThrottled, apiErr.ErrorMessage()))
		}
	}
	return domain.ErrCollaboratorUnavailable.WithError(fmt.Errorf("detect faces: %w", err))
}
