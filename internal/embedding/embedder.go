package embedding

import "context"

// Embedder converts texts into fixed-dimension numeric vectors.
// EmbedBatch returns one vector per input, in input order, so that
// vectors[i] corresponds to texts[i]. Implementations must be safe for
// concurrent use.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
