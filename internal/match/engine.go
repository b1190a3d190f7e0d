package match

import (
	"github.com/muralikrishna-27/aeroface-rec/internal/domain"
)

// Defaults mirror the tuning the kiosk ships with.
const (
	DefaultThreshold  = 0.78
	DefaultWindowSize = 3
	DefaultDimensions = 512
)

// Config tunes the match engine.
type Config struct {
	// Threshold is the minimum cosine similarity for an accepted match.
	Threshold float64
	// WindowSize is how many recent probe embeddings are averaged into the
	// effective probe. Older samples fall off.
	WindowSize int
	// Dimensions is the expected embedding length. Probes and registry
	// entries of any other length are rejected.
	Dimensions int
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Threshold:  DefaultThreshold,
		WindowSize: DefaultWindowSize,
		Dimensions: DefaultDimensions,
	}
}

// Engine scores probe embeddings against the enrolled registry. It keeps a
// rolling window of recent probe samples and always matches on their mean,
// which smooths out per-frame embedding jitter. Not safe for concurrent use;
// one engine serves one kiosk session.
type Engine struct {
	config Config
	window [][]float64
}

// NewEngine creates a match engine. Non-positive config fields fall back to
// defaults.
func NewEngine(config Config) *Engine {
	def := DefaultConfig()
	if config.Threshold <= 0 {
		config.Threshold = def.Threshold
	}
	if config.WindowSize <= 0 {
		config.WindowSize = def.WindowSize
	}
	if config.Dimensions <= 0 {
		config.Dimensions = def.Dimensions
	}
	return &Engine{config: config}
}

// WindowLen returns how many samples the rolling window currently holds.
func (e *Engine) WindowLen() int {
	return len(e.window)
}

// Reset drops all window samples. Call it when a kiosk session ends so one
// visitor's samples never bleed into the next visitor's probe.
func (e *Engine) Reset() {
	e.window = nil
}

// AddSample appends a probe embedding to the rolling window, evicting the
// oldest sample once the window is full. Zero-norm and wrongly sized
// embeddings are rejected before they can poison the window mean.
func (e *Engine) AddSample(embedding []float64) error {
	if len(embedding) != e.config.Dimensions {
		return domain.ErrDimensionMismatch
	}

	normalized, err := Normalize(embedding)
	if err != nil {
		return err
	}

	e.window = append(e.window, normalized)
	if len(e.window) > e.config.WindowSize {
		e.window = e.window[1:]
	}
	return nil
}

// Match scores the current window mean against every registry entry and
// returns the decision. Invalid input (empty window, empty registry, dim
// mismatch in the registry) fails closed: the result carries
// DenialInvalidInput and the error says why.
func (e *Engine) Match(registry []domain.RegistryEntry) (domain.MatchResult, error) {
	rejected := domain.MatchResult{Reason: domain.DenialInvalidInput}

	if len(e.window) == 0 {
		return rejected, domain.ErrInvalidEmbedding
	}
	if len(registry) == 0 {
		return rejected, domain.ErrEmptyRegistry
	}

	probe := Average(e.window)

	best := -2.0 // below the cosine floor of -1
	bestCount := 0
	var bestIdentity string
	for _, entry := range registry {
		if len(entry.Embedding) != e.config.Dimensions {
			return rejected, domain.ErrDimensionMismatch
		}

		score := CosineSimilarity(probe, entry.Embedding)
		switch {
		case score > best:
			best = score
			bestCount = 1
			bestIdentity = entry.Identity
		case score == best:
			bestCount++
		}
	}

	result := domain.MatchResult{Score: best}
	switch {
	case best < e.config.Threshold:
		result.Reason = domain.DenialNoMatch
	case bestCount > 1:
		result.Reason = domain.DenialAmbiguous
	default:
		result.Accepted = true
		result.Identity = &bestIdentity
	}
	return result, nil
}
