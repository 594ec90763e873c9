package sequencer

// Option applies a configuration option to the Sequencer.
type Option func(*Sequencer)

// WithSource sets the random source used to pick among candidate questions.
func WithSource(src Source) Option {
	return func(s *Sequencer) {
		if src != nil {
			s.rng = src
		}
	}
}
