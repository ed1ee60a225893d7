package inference

import "github.com/okian/scorecast/internal/domain/features"

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithEncoder replaces the interaction encoder.
func WithEncoder(enc features.Encoder) Option {
	return func(p *Predictor) {
		if enc != nil {
			p.encode = enc
		}
	}
}
