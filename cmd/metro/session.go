package main

import (
	"context"
	"errors"

	"github.com/aretw0/metro"
	"github.com/aretw0/metro/pkg/core"
)

// openSession creates the service for asset and loads the record the
// property store already holds for it. A store without a record starts an
// empty session.
func openSession(ctx context.Context, asset string) (*metro.Service, error) {
	opts, err := config.Options()
	if err != nil {
		return nil, err
	}
	switch {
	case storeAdapter != "":
		opts = append(opts, metro.WithAdapter(storeAdapter))
	case config.Store.Adapter == "memory":
		// A memory store does not outlive the process.
		opts = append(opts, metro.WithAdapter("file"))
	}
	opts = append(opts, metro.WithLogger(cliLogger()))

	svc, err := metro.New(ctx, asset, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := svc.ImportFromStore(ctx); err != nil && !errors.Is(err, core.ErrMetadataAbsent) {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

// saveSession writes the record back to the property store.
func saveSession(ctx context.Context, svc *metro.Service) error {
	_, err := svc.InjectIntoStore(ctx)
	return err
}
