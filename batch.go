package reviewguard

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PredictBatch scores every review concurrently, preserving input order in
// the output. A bad row (empty text, out-of-range rating) records its error
// in its slot and never affects the other rows; context cancellation stops
// the remaining work and is reported through the group error.
func (c *Classifier) PredictBatch(ctx context.Context, reviews []RawReview) ([]BatchResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == stateUninitialized {
		return nil, ErrNotTrained
	}

	results := make([]BatchResult, len(reviews))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, review := range reviews {
		i, review := i, review
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pred, err := c.predictLocked(review.Text, review.Rating)
			results[i] = BatchResult{Index: i, Prediction: pred, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
