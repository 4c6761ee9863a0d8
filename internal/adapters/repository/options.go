package repository

// Option applies a configuration option to the SQLLedger.
type Option func(*SQLLedger)

// WithMaxOpenConns caps the connection pool. SQLite always uses one.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLLedger) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithMigrate controls whether the schema is created on open.
func WithMigrate(enabled bool) Option {
	return func(s *SQLLedger) {
		s.migrate = enabled
	}
}
