// Package llm wraps the external text-completion backend. The rest of
// the system only sees Client: one prompt in, one completion out, with
// no determinism guarantee across calls.
package llm

import "context"

type Client interface {
	// Run sends a single prompt and returns the full completion text.
	Run(ctx context.Context, prompt string) (string, error)

	// RunStream sends a single prompt and returns completion text in
	// chunks. The channel closes when the model is done or ctx ends.
	RunStream(ctx context.Context, prompt string) (<-chan string, error)
}
