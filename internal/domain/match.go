package domain

// DenialReason classifies why a match attempt was rejected. Every denial kind
// is preserved for logs and telemetry even when the presentation layer shows a
// single "access denied" message.
type DenialReason string

const (
	// DenialNone means the match was accepted.
	DenialNone DenialReason = ""
	// DenialNoMatch means no registry entry scored at or above the threshold.
	DenialNoMatch DenialReason = "no_match"
	// DenialAmbiguous means two or more entries tied at the maximal score.
	// An ambiguous match must never silently pick one identity.
	DenialAmbiguous DenialReason = "ambiguous"
	// DenialInvalidInput means the probe or the registry could not be scored
	// at all (zero-norm vector, dimension mismatch, empty registry). The
	// engine fails closed.
	DenialInvalidInput DenialReason = "invalid_input"
)

// MatchResult is the identity decision for one probe against the registry.
// Score is cosine similarity in [-1, 1]. Accepted is true only when exactly
// one entry holds the maximal score and that score meets the threshold.
type MatchResult struct {
	Identity *string      `json:"identity,omitempty"`
	Score    float64      `json:"score"`
	Accepted bool         `json:"accepted"`
	Reason   DenialReason `json:"reason,omitempty"`
}
