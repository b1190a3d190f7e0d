package domain

import (
	"time"
)

// BoundingBox is an axis-aligned face rectangle in frame pixel coordinates.
// Boxes are produced fresh for every frame and carry no state beyond it.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RegistryEntry is a user's enrolled face embedding. The identity is the
// unique key; re-enrolling the same identity overwrites the embedding
// (last-write-wins), it never appends.
type RegistryEntry struct {
	Identity  string    `json:"identity"`
	Embedding []float64 `json:"-"`
	ModelName string    `json:"model_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StableCapture is the single frame chosen by the stabilization gate once a
// subject has held still long enough. It is transient: handed to the embedder
// immediately and never persisted.
type StableCapture struct {
	Frame      []byte
	Box        BoundingBox
	HeldFrames int
	CapturedAt time.Time
}
