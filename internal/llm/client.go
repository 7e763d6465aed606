package llm

import (
	"context"
)

// Client is the generative oracle used for pathway classification.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
