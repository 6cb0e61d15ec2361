package evo

import "context"

// key is an unexported type so Options values stored by this package never
// collide with context values set by other packages.
type key int

var optionsKey key

// NewContext returns a copy of ctx carrying opts, retrievable with
// FromContext.
func NewContext(ctx context.Context, opts *Options) context.Context {
	return context.WithValue(ctx, optionsKey, opts)
}

// FromContext extracts the Options previously attached with NewContext.
func FromContext(ctx context.Context) (*Options, bool) {
	opts, ok := ctx.Value(optionsKey).(*Options)
	return opts, ok
}

// RequireFromContext is FromContext but returns ErrOptionsNotFound instead
// of a bare false when ctx carries no Options.
func RequireFromContext(ctx context.Context) (*Options, error) {
	opts, ok := FromContext(ctx)
	if !ok {
		return nil, ErrOptionsNotFound
	}
	return opts, nil
}
