package ending

// Option configures the guarantor.
type Option func(*windowGuarantor)

// WithCoverage sets the closing window length in seconds.
func WithCoverage(seconds float64) Option {
	return func(g *windowGuarantor) {
		g.coverage = seconds
	}
}

// WithImportance sets the importance of the synthesized segment.
func WithImportance(importance float64) Option {
	return func(g *windowGuarantor) {
		g.importance = importance
	}
}

// WithDescription overrides the synthesized segment label.
func WithDescription(desc string) Option {
	return func(g *windowGuarantor) {
		g.description = desc
	}
}
