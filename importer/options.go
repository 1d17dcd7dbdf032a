package importer

type options struct {
	strictOrdering bool
}

// Option configures an Importer or a synthesizer.
type Option func(*options)

// WithStrictOrdering makes a row dated before its predecessor a fatal
// *OutOfOrderError. Without it the row order is trusted as given.
func WithStrictOrdering() Option {
	return func(o *options) {
		o.strictOrdering = true
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
