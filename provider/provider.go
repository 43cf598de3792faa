// Package provider defines the base interface shared by all injected
// capabilities (structured evaluation, chunk transcription). Concrete
// backends live outside the core and are passed in at construction.
package provider

import "context"

// Provider is the base interface all capabilities must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}
