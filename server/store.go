package server

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/imrenagi/go-wiki/entry"
	"github.com/rs/zerolog/log"
)

// NewStore builds the configured entry store wrapped with instrumentation.
// The returned close function releases backend clients.
func NewStore(ctx context.Context, cfg StoreConfig) (entry.Store, func() error, error) {
	var (
		store   entry.Store
		closeFn = func() error { return nil }
	)

	switch cfg.Backend {
	case BackendMemory:
		log.Warn().Msg("using in-memory entry store, entries will not survive a restart")
		store = entry.NewMemoryStore()
	case BackendGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		log.Info().Str("bucket", cfg.GCS.Bucket).Str("prefix", cfg.GCS.Prefix).Msg("using gcs entry store")
		store = entry.NewGCSStore(client, cfg.GCS.Bucket, cfg.GCS.Prefix, entry.WithExtension(cfg.Extension))
		closeFn = client.Close
	default:
		fs, err := entry.NewFileStore(cfg.Dir, entry.WithExtension(cfg.Extension))
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", fs.Dir()).Msg("using file entry store")
		store = fs
	}

	instrumented, err := entry.NewInstrumentedStore(store, nil)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to instrument entry store: %w", err)
	}
	return instrumented, closeFn, nil
}
