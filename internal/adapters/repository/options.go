package repository

import (
	"time"

	"github.com/okian/salaryexplorer/pkg/logger"
)

// Option applies a configuration option to the CachedStore.
type Option func(*CachedStore)

// WithLoadTimeout bounds how long a single load may take.
func WithLoadTimeout(timeout time.Duration) Option {
	return func(s *CachedStore) {
		if timeout > 0 {
			s.loadTimeout = timeout
		}
	}
}

// WithLogger sets the logger used for load events.
func WithLogger(l logger.Logger) Option {
	return func(s *CachedStore) {
		if l != nil {
			s.logger = l
		}
	}
}
