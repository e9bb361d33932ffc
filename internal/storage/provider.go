package storage

import (
	"context"
	"creatorstats/internal/providers"
	"creatorstats/internal/structures"
	"fmt"
	"time"
)

// instrumentedStore times every write.
type instrumentedStore struct {
	Store
	metrics providers.MetricsProviderInterface
}

func (s *instrumentedStore) Set(key string, value []byte) error {
	start := time.Now()
	err := s.Store.Set(key, value)
	s.metrics.ObserveStoreWriteDuration(time.Since(start))
	return err
}

func (s *instrumentedStore) Remove(key string) error {
	start := time.Now()
	err := s.Store.Remove(key)
	s.metrics.ObserveStoreWriteDuration(time.Since(start))
	return err
}

// NewStoreProvider opens the configured backend. The returned cleanup closes it.
func NewStoreProvider(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (Store, func(), error) {
	var (
		store Store
		err   error
	)

	switch conf.Storage.Driver {
	case "memory":
		store = NewMemoryStore()
	case "file":
		compressor, cErr := NewZstdCompressor()
		if cErr != nil {
			return nil, nil, cErr
		}
		store, err = NewFileStore(conf.Storage.Path, compressor)
	case "sqlite":
		store, err = NewSQLiteStore(context.Background(), conf.Storage.Path)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", conf.Storage.Driver, err)
	}

	logger.Infof(providers.TypeApp, "Storage opened: driver=%s path=%s", conf.Storage.Driver, conf.Storage.Path)

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Error closing store: %s", err)
		}
	}
	return &instrumentedStore{Store: store, metrics: metrics}, cleanup, nil
}
