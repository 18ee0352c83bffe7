package reviewguard

// An Embedder produces a fixed-width dense embedding for a text. It is an
// optional capability: the pipeline is fully functional and deterministic
// without one, and a backend that fails its probe at construction is dropped
// rather than consulted again per call.
type Embedder interface {
	// Embed returns a vector of exactly Width() values.
	Embed(text string) ([]float64, error)
	// Width is the fixed embedding dimensionality (e.g. 768).
	Width() int
}
