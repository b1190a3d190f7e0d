package deepface

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
)

// Provider implements provider.Detector and provider.Embedder against a
// DeepFace HTTP service. The service is purely an adapter: all matching and
// attendance policy stays in this repo.
type Provider struct {
	client *Client
}

func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Detect reports how many faces DeepFace found and the bounding box when there
// is exactly one. An unreachable service surfaces as a collaborator failure,
// never as "no face".
func (p *Provider) Detect(ctx context.Context, frame []byte) (provider.Detection, error) {
	resp, err := p.represent(ctx, frame)
	if err != nil {
		return provider.Detection{}, err
	}

	det := provider.Detection{FaceCount: len(resp.Results)}
	if len(resp.Results) == 1 {
		area := resp.Results[0].FacialArea
		det.Box = &domain.BoundingBox{
			X:      float64(area.X),
			Y:      float64(area.Y),
			Width:  float64(area.W),
			Height: float64(area.H),
		}
	}

	return det, nil
}

// Embed extracts the embedding of the single face in the image.
func (p *Provider) Embed(ctx context.Context, image []byte) ([]float64, error) {
	resp, err := p.represent(ctx, image)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, domain.ErrNoFaceDetected.WithError(ErrNoFaceInResponse)
	}
	if len(resp.Results) > 1 {
		return nil, domain.ErrMultipleFaces
	}

	return resp.Results[0].Embedding, nil
}

func (p *Provider) ModelName() string {
	return p.client.config.Model
}

func (p *Provider) represent(ctx context.Context, image []byte) (*RepresentResponse, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, domain.ErrCollaboratorUnavailable.WithError(fmt.Errorf("deepface represent: %w", err))
	}

	return resp, nil
}

var (
	_ provider.Detector = (*Provider)(nil)
	_ provider.Embedder = (*Provider)(nil)
)
