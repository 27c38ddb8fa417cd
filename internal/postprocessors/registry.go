// Package postprocessors builds the chunkers that split extracted text.
package postprocessors

import (
	"fmt"
	"sort"

	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
)

// Config carries the settings a chunker builder may use.
type Config struct {
	// TargetTokens is the per-chunk token budget. Zero uses the builder default.
	TargetTokens int

	// Model selects the tokenizer encoding. Empty uses the default encoding.
	Model string
}

// BuilderFunc creates a Chunker from config.
type BuilderFunc func(cfg Config) (driven.Chunker, error)

// Registry maps chunker names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new chunker registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder. A later registration under the same name wins.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a chunker by name with the given config.
func (r *Registry) Build(name string, cfg Config) (driven.Chunker, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown chunker: %s", name)
	}
	return builder(cfg)
}

// Has returns true if a chunker with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered chunker names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
