package vectorindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.VectorIndex = (*Service)(nil)

// File names inside the index directory. Each flush writes the pair into a
// new gen-<n> directory and then repoints CurrentFile at it, so a reader sees
// either the previous pair or the new one, never a mix.
const (
	VectorFile  = "vectors.bin"
	MapFile     = "vectors.map.json"
	CurrentFile = "CURRENT"

	generationPrefix = "gen-"
)

// Service owns a FlatIndex and its Registry as one consistent pair.
//
// writeMu is the single mutation lock: Add and Flush hold it, so an append
// and its registration never interleave with another append or a snapshot.
// mu guards the pair's memory for readers; Search and Count only take its
// read lock, and Flush only needs it while copying the snapshot out.
type Service struct {
	writeMu sync.Mutex
	mu      sync.RWMutex

	dir        string
	generation uint64 // committed snapshot, 0 before the first flush
	index      *FlatIndex
	registry   *Registry
	closed     bool
}

// Open loads the committed index pair stored in dir, or starts empty when
// nothing has been flushed there. A pair that is incomplete, unreadable, of
// another dimension or inconsistent is logged and replaced by an empty pair.
// Output of a flush that never reached its commit is ignored.
func Open(dir string, dimension int) (*Service, error) {
	if dir == "" {
		return nil, fmt.Errorf("vectorindex: %w: empty index directory", domain.ErrInvalidInput)
	}
	index, err := NewFlatIndex(dimension)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: %w", err)
	}

	s := &Service{
		dir:      dir,
		index:    index,
		registry: NewRegistry(),
	}

	loaded, err := s.load(dimension)
	switch {
	case err != nil:
		logger.Warn("vectorindex: %v; starting with an empty index", err)
	case loaded:
		logger.Debug("vectorindex: loaded %d vectors from %s", s.index.Count(), dir)
	default:
		logger.Debug("vectorindex: no index files in %s, starting empty", dir)
	}

	return s, nil
}

// load reads the pair CurrentFile points at. Without CurrentFile it falls
// back to a pair stored directly in dir, and returns false with no error when
// there is nothing to load.
func (s *Service) load(dimension int) (bool, error) {
	pairDir := s.dir
	generation, err := readCurrent(s.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		generation = 0
	case err != nil:
		return false, fmt.Errorf("%w: %w", domain.ErrIndexIntegrity, err)
	default:
		pairDir = filepath.Join(s.dir, generationName(generation))
	}

	vecData, vecErr := os.ReadFile(filepath.Join(pairDir, VectorFile))
	mapData, mapErr := os.ReadFile(filepath.Join(pairDir, MapFile))

	vecMissing := errors.Is(vecErr, fs.ErrNotExist)
	mapMissing := errors.Is(mapErr, fs.ErrNotExist)
	switch {
	case vecMissing && mapMissing && generation > 0:
		return false, fmt.Errorf("%w: %s points at missing %s",
			domain.ErrIndexIntegrity, CurrentFile, generationName(generation))
	case vecMissing && mapMissing:
		return false, nil
	case vecMissing:
		return false, fmt.Errorf("%w: %s exists without %s", domain.ErrIndexIntegrity, MapFile, VectorFile)
	case mapMissing:
		return false, fmt.Errorf("%w: %s exists without %s", domain.ErrIndexIntegrity, VectorFile, MapFile)
	case vecErr != nil:
		return false, fmt.Errorf("%w: read %s: %w", domain.ErrIndexIntegrity, VectorFile, vecErr)
	case mapErr != nil:
		return false, fmt.Errorf("%w: read %s: %w", domain.ErrIndexIntegrity, MapFile, mapErr)
	}

	index := &FlatIndex{}
	if err := index.UnmarshalBinary(vecData); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrIndexIntegrity, err)
	}
	if index.Dimension() != dimension {
		return false, fmt.Errorf("%w: stored dimension %d, configured %d",
			domain.ErrIndexIntegrity, index.Dimension(), dimension)
	}

	registry := NewRegistry()
	if err := json.Unmarshal(mapData, registry); err != nil {
		return false, fmt.Errorf("%w: decode %s: %w", domain.ErrIndexIntegrity, MapFile, err)
	}

	if registry.Len() != index.Count() {
		return false, fmt.Errorf("%w: %d vectors but %d chunk mappings",
			domain.ErrIndexIntegrity, index.Count(), registry.Len())
	}

	s.index = index
	s.registry = registry
	s.generation = generation
	return true, nil
}

// Add appends embedding and registers it against chunkID.
// The context is checked once, before the critical section; once the append
// starts it always completes together with its registration.
func (s *Service) Add(ctx context.Context, chunkID string, embedding []float32) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return -1, fmt.Errorf("vectorindex: %w", domain.ErrClosed)
	}

	// Validate both halves first so a rejected call changes nothing.
	if err := s.index.validate(embedding); err != nil {
		return -1, fmt.Errorf("vectorindex: add: %w", err)
	}
	next := s.index.Count()
	if err := s.registry.check(next, chunkID); err != nil {
		return -1, fmt.Errorf("vectorindex: add: %w", err)
	}

	idx, err := s.index.Add(embedding)
	if err != nil {
		return -1, fmt.Errorf("vectorindex: add: %w", err)
	}
	if err := s.registry.Register(idx, chunkID); err != nil {
		return -1, fmt.Errorf("vectorindex: add: %w", err)
	}
	return idx, nil
}

// Search returns the k nearest chunks to query, closest first.
func (s *Service) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("vectorindex: %w", domain.ErrClosed)
	}

	hits, err := s.index.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: search: %w", err)
	}

	results := make([]driven.VectorHit, 0, len(hits))
	for _, h := range hits {
		chunkID, err := s.registry.Resolve(h.LocalIndex)
		if err != nil {
			// Unreachable while Add keeps the pair in step.
			return nil, fmt.Errorf("vectorindex: search: %w: %w", domain.ErrIndexIntegrity, err)
		}
		results = append(results, driven.VectorHit{
			LocalIndex: h.LocalIndex,
			ChunkID:    chunkID,
			Distance:   h.Distance,
		})
	}
	return results, nil
}

// Count returns the number of stored vectors.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Count()
}

// Dimension returns the fixed vector length.
func (s *Service) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Dimension()
}

// Dir returns the directory holding the index files.
func (s *Service) Dir() string {
	return s.dir
}

// SnapshotDir returns the directory of the last committed pair, or "" if
// nothing has been flushed yet.
func (s *Service) SnapshotDir() string {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.generation == 0 {
		return ""
	}
	return filepath.Join(s.dir, generationName(s.generation))
}

// Flush writes a full snapshot of the pair, creating the directory if needed.
func (s *Service) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.flushLocked()
}

// flushLocked writes the snapshot. Caller must hold writeMu.
func (s *Service) flushLocked() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("vectorindex: %w", domain.ErrClosed)
	}
	vecData, err := s.index.MarshalBinary()
	if err != nil {
		s.mu.RUnlock()
		return fmt.Errorf("vectorindex: encode vectors: %w", err)
	}
	mapData, err := json.Marshal(s.registry)
	count := s.index.Count()
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("vectorindex: encode chunk map: %w", err)
	}

	next := s.generation + 1
	genDir := filepath.Join(s.dir, generationName(next))
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("vectorindex: create %s: %w", s.dir, err)
	}
	// Anything already there is left over from an interrupted flush.
	if err := os.RemoveAll(genDir); err != nil {
		return fmt.Errorf("vectorindex: clear %s: %w", genDir, err)
	}
	if err := os.Mkdir(genDir, 0o755); err != nil {
		return fmt.Errorf("vectorindex: create %s: %w", genDir, err)
	}
	if err := writeFileAtomic(filepath.Join(genDir, VectorFile), vecData); err != nil {
		return fmt.Errorf("vectorindex: write %s: %w", VectorFile, err)
	}
	if err := writeFileAtomic(filepath.Join(genDir, MapFile), mapData); err != nil {
		return fmt.Errorf("vectorindex: write %s: %w", MapFile, err)
	}
	if err := syncDir(genDir); err != nil {
		return fmt.Errorf("vectorindex: sync %s: %w", genDir, err)
	}

	// The rename of CurrentFile is the commit point for the pair.
	if err := writeFileAtomic(filepath.Join(s.dir, CurrentFile), []byte(generationName(next)+"\n")); err != nil {
		return fmt.Errorf("vectorindex: write %s: %w", CurrentFile, err)
	}
	s.generation = next
	s.prune()

	logger.Debug("vectorindex: saved %d vectors to %s", count, genDir)
	return nil
}

// prune removes every pair except the committed one. Failures only cost disk space.
func (s *Service) prune() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		logger.Debug("vectorindex: prune %s: %v", s.dir, err)
		return
	}
	keep := generationName(s.generation)
	for _, e := range entries {
		name := e.Name()
		stale := name == VectorFile || name == MapFile ||
			(e.IsDir() && strings.HasPrefix(name, generationPrefix) && name != keep)
		if !stale {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, name)); err != nil {
			logger.Debug("vectorindex: remove %s: %v", name, err)
		}
	}
}

// Close flushes the pair and rejects further use. Closing twice is a no-op.
func (s *Service) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil
	}

	err := s.flushLocked()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return err
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func generationName(n uint64) string {
	return generationPrefix + strconv.FormatUint(n, 10)
}

// readCurrent returns the generation CurrentFile in dir points at.
func readCurrent(dir string) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(dir, CurrentFile))
	if err != nil {
		return 0, err
	}
	name := strings.TrimSpace(string(data))
	n, err := strconv.ParseUint(strings.TrimPrefix(name, generationPrefix), 10, 64)
	if err != nil || n == 0 || !strings.HasPrefix(name, generationPrefix) {
		return 0, fmt.Errorf("%s holds %q, not a generation", CurrentFile, name)
	}
	return n, nil
}

// syncDir flushes directory entries so renames inside dir survive a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
