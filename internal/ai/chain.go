package ai

import "context"

type classifierChain struct {
	primary  Classifier
	fallback Classifier
}

// WithFallback returns a classifier that first tries the primary implementation
// and falls back to the provided classifier when the primary is unavailable or
// produces an unusable response.
func WithFallback(primary, fallback Classifier) Classifier {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &classifierChain{primary: primary, fallback: fallback}
}

func (c *classifierChain) Enabled() bool {
	if c == nil {
		return false
	}
	if c.primary != nil && c.primary.Enabled() {
		return true
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return true
	}
	return false
}

func (c *classifierChain) Classify(ctx context.Context, text string) (Classification, error) {
	if c == nil {
		return Classification{}, ErrUnavailable
	}
	if c.primary != nil && c.primary.Enabled() {
		if result, err := c.primary.Classify(ctx, text); err == nil {
			if result.WellFormed() {
				return result, nil
			}
		}
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback.Classify(ctx, text)
	}
	return Classification{}, ErrUnavailable
}
