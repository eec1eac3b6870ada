// Package repository loads the salary dataset and caches it for the
// lifetime of the process.
package repository

import (
	"context"

	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

// Source produces the raw records of the dataset.
type Source interface {
	Read(ctx context.Context) ([]model.Record, error)
}

// Store provides read access to the loaded dataset.
type Store interface {
	// EnsureLoaded loads the dataset on first use and returns the same
	// instance on every later call.
	EnsureLoaded(ctx context.Context) (*dataset.Dataset, error)

	// Loaded reports whether a load has succeeded.
	Loaded() bool

	// Count returns the number of loaded records, 0 before the first load.
	Count(ctx context.Context) int
}
