// Package lifecycle bridges metro's scene watcher to the lifecycle event model.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/metro/pkg/adapters/fs"
)

type sceneSource struct {
	events <-chan fs.SceneEvent
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits scene events.
// The output channel closes when ctx is done or events is closed.
func NewSource(events <-chan fs.SceneEvent) lifecycle.Source {
	return &sceneSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *sceneSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *sceneSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
