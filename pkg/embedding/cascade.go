package embedding

import (
	"fmt"
)

// Cascade tries each provider in order and returns the first successful
// embedding. Summary embedding is a blocking step at the end of every
// analysis strategy, so a single flaky provider must not fail the triage.
type Cascade struct {
	providers []EmbeddingProvider
}

var _ EmbeddingProvider = &Cascade{}

func NewCascade(providers ...EmbeddingProvider) *Cascade {
	return &Cascade{providers: providers}
}

func (c *Cascade) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("embedding cascade has no providers")
	}

	var lastErr error
	for _, p := range c.providers {
		res, err := p.Generate(text, taskType)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all embedding providers failed: %w", lastErr)
}
