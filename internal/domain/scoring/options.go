package scoring

// Option applies a configuration option to the KeywordScorer.
type Option func(*KeywordScorer)

// WithLimit caps the number of matches returned by Score. Non-positive values
// keep the default.
func WithLimit(n int) Option {
	return func(s *KeywordScorer) {
		if n > 0 {
			s.limit = n
		}
	}
}
