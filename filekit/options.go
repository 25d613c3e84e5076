package filekit

import "time"

// Visibility of an uploaded file
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Options holds per-call upload settings
type Options struct {
	ContentType string
	Metadata    map[string]string
	Visibility  Visibility

	// TTL overrides the backend's default cache expiry for this entry.
	TTL time.Duration
}

// Option configures an upload
type Option func(*Options)

// WithContentType sets the MIME type recorded for the file
func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

// WithMetadata attaches custom metadata
func WithMetadata(metadata map[string]string) Option {
	return func(o *Options) {
		if o.Metadata == nil {
			o.Metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			o.Metadata[k] = v
		}
	}
}

// WithVisibility sets the file visibility
func WithVisibility(v Visibility) Option {
	return func(o *Options) {
		o.Visibility = v
	}
}

// WithTTL sets a per-entry cache expiry
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

// ApplyOptions folds options into a fresh Options value.
func ApplyOptions(options ...Option) *Options {
	opts := &Options{}
	for _, option := range options {
		option(opts)
	}
	return opts
}
