package platform

import (
	"context"

	"github.com/aretw0/metro/pkg/engine"
)

// New opens the property store for asset and wires the metadata service.
//
//	svc, err := metro.New(ctx, "scan.glb", metro.WithAdapter("file"))
func New(ctx context.Context, asset string, opts ...Option) (*engine.Service, error) {
	store, err := Init(ctx, asset, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	namespace, _ := o.config["namespace"].(string)
	extrasKey, _ := o.config["extras_key"].(string)

	return engine.New(engine.Config{
		Logger:           o.logger,
		PropertyStore:    store,
		Namespace:        namespace,
		ExtrasKey:        extrasKey,
		Aliases:          o.aliases,
		LineageGenerator: o.lineage,
	}), nil
}
