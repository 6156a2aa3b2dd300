package overlap

// Option configures the resolver.
type Option func(*greedyResolver)

// WithTolerance sets how many seconds two accepted segments may share
// before the less important one is rejected.
func WithTolerance(seconds float64) Option {
	return func(r *greedyResolver) {
		r.tolerance = seconds
	}
}

// WithReelCap bounds the summed duration of accepted segments. Zero
// disables the cap.
func WithReelCap(seconds float64) Option {
	return func(r *greedyResolver) {
		r.reelCap = seconds
	}
}

// WithMinDuration sets the shortest segment kept after trimming.
func WithMinDuration(seconds float64) Option {
	return func(r *greedyResolver) {
		r.minDuration = seconds
	}
}
