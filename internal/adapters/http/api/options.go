package api

// Option configures a Server.
type Option func(*Server)

// WithRateLimiter throttles the business endpoints per client.
func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithMaxBodyBytes caps the size of JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}
