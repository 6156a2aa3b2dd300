package dedupe

// Option applies a configuration option to the temporal deduper.
type Option func(*temporalDeduper)

// WithWindow sets the proximity window in seconds. Non-positive values
// disable deduplication.
func WithWindow(seconds float64) Option {
	return func(d *temporalDeduper) {
		d.window = seconds
	}
}
