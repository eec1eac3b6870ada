package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/pkg/logger"
	"github.com/okian/salaryexplorer/pkg/metrics"
)

const defaultLoadTimeout = 30 * time.Second

// CachedStore loads the dataset from a Source once and serves the same
// instance afterwards. Concurrent first callers share a single read. A
// failed load is not cached, so a later call retries.
type CachedStore struct {
	source      Source
	loadTimeout time.Duration
	logger      logger.Logger

	group        singleflight.Group
	ds           atomic.Pointer[dataset.Dataset]
	reads        atomic.Int64
	lastDuration atomic.Int64
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore creates a store backed by source.
func NewCachedStore(source Source, opts ...Option) *CachedStore {
	s := &CachedStore{
		source:      source,
		loadTimeout: defaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureLoaded returns the cached dataset, loading it on first use.
func (s *CachedStore) EnsureLoaded(ctx context.Context) (*dataset.Dataset, error) {
	if ds := s.ds.Load(); ds != nil {
		return ds, nil
	}
	v, err, _ := s.group.Do("dataset", func() (any, error) {
		if ds := s.ds.Load(); ds != nil {
			return ds, nil
		}
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

// Loaded reports whether the dataset is available.
func (s *CachedStore) Loaded() bool {
	return s.ds.Load() != nil
}

// Count returns the number of loaded records.
func (s *CachedStore) Count(_ context.Context) int {
	return s.ds.Load().Len()
}

// Reads returns how many times the source has been read.
func (s *CachedStore) Reads() int64 {
	return s.reads.Load()
}

// LastLoadDuration returns the duration of the most recent read.
func (s *CachedStore) LastLoadDuration() time.Duration {
	return time.Duration(s.lastDuration.Load())
}

func (s *CachedStore) load(ctx context.Context) (*dataset.Dataset, error) {
	// Shared by every waiter, so it must outlive the first caller.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
	defer cancel()

	log := s.log()
	start := time.Now()
	s.reads.Add(1)
	records, err := s.source.Read(ctx)
	took := time.Since(start)
	s.lastDuration.Store(int64(took))

	if err != nil {
		if !errors.Is(err, ErrDataUnavailable) && !errors.Is(err, ErrDataIntegrity) {
			err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		kind := errorKind(err)
		metrics.RecordDatasetLoad(kind, metrics.Milliseconds(took))
		metrics.RecordErrorByComponent("repository", kind)
		log.Error(ctx, "dataset load failed", logger.Error(err), logger.Duration("took", took))
		return nil, err
	}

	ds := dataset.New(records)
	s.ds.Store(ds)
	metrics.RecordDatasetLoad("success", metrics.Milliseconds(took))
	metrics.UpdateDatasetRecords(ds.Len())
	log.Info(ctx, "dataset loaded", logger.Int("records", ds.Len()), logger.Duration("took", took))
	return ds, nil
}

func (s *CachedStore) log() logger.Logger {
	if s.logger == nil {
		s.logger = logger.Named("repository")
	}
	return s.logger
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrDataIntegrity):
		return "integrity"
	case errors.Is(err, ErrDataUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
