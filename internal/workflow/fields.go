package workflow

import (
	"strings"
	"sync"
)

// Resolution is the cached per-record-type outcome of state-field lookup.
type Resolution struct {
	// Declared is the field the workflow configuration names, or "" when
	// the record type has no workflow.
	Declared string
	// HasWorkflow reports whether a definition exists for the type.
	HasWorkflow bool
}

// FieldResolver memoizes the state-field name per record type for the
// lifetime of the process. Two concurrent first lookups for the same
// type may both consult the source; they store the same value, which is
// harmless.
type FieldResolver struct {
	source       Source
	defaultField string
	fallback     string

	mu     sync.RWMutex
	byType map[string]Resolution
}

// NewFieldResolver builds a resolver. defaultField is used when a
// definition declares no state field; fallback is the conventional
// field consulted when the declared one is absent from a record.
func NewFieldResolver(source Source, defaultField, fallback string) *FieldResolver {
	if strings.TrimSpace(defaultField) == "" {
		defaultField = "workflow_state"
	}
	if strings.TrimSpace(fallback) == "" {
		fallback = "status"
	}
	return &FieldResolver{
		source:       source,
		defaultField: defaultField,
		fallback:     fallback,
		byType:       make(map[string]Resolution),
	}
}

// Fallback returns the conventional state field name.
func (r *FieldResolver) Fallback() string {
	return r.fallback
}

// Resolve returns the state-field resolution for a record type,
// computing and caching it on first use.
func (r *FieldResolver) Resolve(recordType string) (Resolution, error) {
	recordType = strings.TrimSpace(recordType)

	r.mu.RLock()
	cached, ok := r.byType[recordType]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	def, found, err := r.source.DefinitionFor(recordType)
	if err != nil {
		// Not cached: a later lookup may succeed once the source recovers.
		return Resolution{}, err
	}

	resolution := Resolution{}
	if found {
		resolution.HasWorkflow = true
		resolution.Declared = strings.TrimSpace(def.StateField)
		if resolution.Declared == "" {
			resolution.Declared = r.defaultField
		}
	}

	r.mu.Lock()
	r.byType[recordType] = resolution
	r.mu.Unlock()
	return resolution, nil
}
