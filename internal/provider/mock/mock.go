package mock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"math"
	"sync"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
	"github.com/muralikrishna-27/aeroface-rec/internal/provider"
)

const embeddingDimension = 512

// minFrameSize rejects inputs too small to be a real encoded image.
const minFrameSize = 64

// Provider implements provider.Detector and provider.Embedder for tests and
// local development. Embeddings are deterministic per image so the same frame
// always maps to the same vector.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

// Detect reports a single centered face for any plausibly sized frame.
func (p *Provider) Detect(ctx context.Context, frame []byte) (provider.Detection, error) {
	if len(frame) < minFrameSize {
		return provider.Detection{}, domain.ErrInvalidImage
	}

	return provider.Detection{
		Box: &domain.BoundingBox{
			X:      0.1,
			Y:      0.1,
			Width:  0.8,
			Height: 0.8,
		},
		FaceCount: 1,
	}, nil
}

// Embed generates a deterministic unit-length embedding from the image hash.
func (p *Provider) Embed(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) < minFrameSize {
		return nil, domain.ErrInvalidImage
	}

	return generateEmbedding(image), nil
}

func (p *Provider) ModelName() string {
	return "mock-sha256"
}

// ValidFrame returns a frame large enough to pass size validation.
func ValidFrame() []byte {
	return bytes.Repeat([]byte("frame-"), 16)
}

// FrameSource replays a fixed sequence of frames and then reports
// provider.ErrStreamClosed. Safe for a single consumer.
type FrameSource struct {
	mu     sync.Mutex
	frames [][]byte
	next   int
}

func NewFrameSource(frames ...[]byte) *FrameSource {
	return &FrameSource{frames: frames}
}

func (s *FrameSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.frames) {
		return nil, provider.ErrStreamClosed
	}

	frame := s.frames[s.next]
	s.next++
	return frame, nil
}

// generateEmbedding maps the image hash onto a normalized vector.
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var (
	_ provider.Detector    = (*Provider)(nil)
	_ provider.Embedder    = (*Provider)(nil)
	_ provider.FrameSource = (*FrameSource)(nil)
)
