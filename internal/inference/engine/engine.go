package engine

import "context"

type Message struct {
	Role    string
	Content string
}

type JSONSchema struct {
	Name   string
	Schema map[string]any
}

type GenerateOptions struct {
	Temperature float64
	JSONSchema  *JSONSchema
}

// Engine produces one completion per call. Implementations do not retry; a
// failed call is reported to the caller as is.
type Engine interface {
	GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error)
}
