package provider

import (
	"context"
	"errors"

	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// ErrStreamClosed is returned by a FrameSource when no more frames will come
// (camera released, file exhausted). It is a normal end of stream, not a fault.
var ErrStreamClosed = errors.New("frame stream closed")

// FrameSource supplies raw camera frames as encoded image bytes. Frame
// acquisition itself (device handling, decoding) lives behind this interface.
type FrameSource interface {
	// Next blocks until a frame is available, the stream ends
	// (ErrStreamClosed) or the context is cancelled.
	Next(ctx context.Context) ([]byte, error)
}

// Detection is the per-frame result of the detection adapter. Box is set only
// when exactly one face was found; FaceCount carries the raw count so the
// stabilization gate can reset on zero or multiple faces.
type Detection struct {
	Box       *domain.BoundingBox
	FaceCount int
}

// Detector finds faces in a frame.
type Detector interface {
	Detect(ctx context.Context, frame []byte) (Detection, error)
}

// Embedder turns a face image into a fixed-length embedding vector.
type Embedder interface {
	Embed(ctx context.Context, image []byte) ([]float64, error)

	// ModelName identifies the embedding model; stored next to embeddings so
	// vectors from different models are never compared by accident.
	ModelName() string
}
