package engine

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	HasRecord     bool   `json:"has_record"`
	Extracted     bool   `json:"extracted"`
	LineageID     string `json:"lineage_id,omitempty"`
	Unrecognized  int    `json:"unrecognized"`
	Namespace     string `json:"namespace"`
	ExtrasKey     string `json:"extras_key"`
	PropertyStore string `json:"property_store"`
	StoreState    any    `json:"property_store_state,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := ServiceState{
		Extracted:     s.store.Extracted(),
		Namespace:     s.props.Namespace(),
		ExtrasKey:     s.extras.Key(),
		PropertyStore: fmt.Sprintf("%T", s.backend),
	}
	if rec, ok := s.store.Record(); ok {
		state.HasRecord = true
		state.Unrecognized = len(rec.Unrecognized)
		if rec.Lineage.LineageID != nil {
			state.LineageID = rec.Lineage.LineageID.String()
		}
	}
	// Try to get component type if the backend implements introspection.Component
	if comp, ok := s.backend.(introspection.Component); ok {
		state.PropertyStore = comp.ComponentType()
	}
	if intro, ok := s.backend.(introspection.Introspectable); ok {
		state.StoreState = intro.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
