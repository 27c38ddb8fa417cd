package vectorindex

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// Registry maps local indices to chunk IDs.
// Entries are registered densely in append order, so its size always
// matches the number of vectors added alongside it.
// It is not safe for concurrent use; Service provides locking.
type Registry struct {
	ids     []string
	byChunk map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byChunk: make(map[string]int)}
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Register records chunkID for localIndex.
// localIndex must be the next unregistered position.
func (r *Registry) Register(localIndex int, chunkID string) error {
	if err := r.check(localIndex, chunkID); err != nil {
		return err
	}
	r.ids = append(r.ids, chunkID)
	r.byChunk[chunkID] = localIndex
	return nil
}

// Resolve returns the chunk ID registered for localIndex.
func (r *Registry) Resolve(localIndex int) (string, error) {
	if localIndex < 0 || localIndex >= len(r.ids) {
		return "", fmt.Errorf("%w: local index %d", domain.ErrNotFound, localIndex)
	}
	return r.ids[localIndex], nil
}

// check validates a registration without applying it.
func (r *Registry) check(localIndex int, chunkID string) error {
	if chunkID == "" {
		return fmt.Errorf("%w: empty chunk ID", domain.ErrInvalidInput)
	}
	if localIndex != len(r.ids) {
		return fmt.Errorf("%w: local index %d registered out of order, next is %d",
			domain.ErrInvalidArgument, localIndex, len(r.ids))
	}
	if prev, ok := r.byChunk[chunkID]; ok {
		return fmt.Errorf("%w: chunk %s already registered at %d", domain.ErrInvalidInput, chunkID, prev)
	}
	return nil
}

// MarshalJSON encodes the registry as an object keyed by decimal local index.
func (r *Registry) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(r.ids))
	for i, id := range r.ids {
		m[strconv.Itoa(i)] = id
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a registry, requiring keys to cover 0..n-1 exactly.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	ids := make([]string, len(m))
	byChunk := make(map[string]int, len(m))
	for k, id := range m {
		i, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("chunk map key %q is not an integer", k)
		}
		if i < 0 || i >= len(m) {
			return fmt.Errorf("chunk map key %d out of range for %d entries", i, len(m))
		}
		if id == "" {
			return fmt.Errorf("chunk map key %d has empty chunk ID", i)
		}
		if _, dup := byChunk[id]; dup {
			return fmt.Errorf("chunk map registers %s twice", id)
		}
		ids[i] = id
		byChunk[id] = i
	}
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("chunk map is missing local index %d", i)
		}
	}

	r.ids = ids
	r.byChunk = byChunk
	return nil
}
