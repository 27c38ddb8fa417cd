package vectorindex

import (
	"container/heap"
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// Binary layout: magic, version, dimension, count, then count*dimension
// little-endian float32 values in insertion order.
const (
	vectorMagic   = "CIQV"
	formatVersion = uint32(1)
	headerSize    = 16
)

// Hit is a single search result.
type Hit struct {
	LocalIndex int
	Distance   float32
}

// FlatIndex is an append-only exact nearest-neighbour index.
// It is not safe for concurrent use; Service provides locking.
type FlatIndex struct {
	dim  int
	data []float32
}

// NewFlatIndex creates an empty index for vectors of length dim.
func NewFlatIndex(dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidArgument, dim)
	}
	return &FlatIndex{dim: dim}, nil
}

// Dimension returns the fixed vector length.
func (f *FlatIndex) Dimension() int {
	return f.dim
}

// Count returns the number of stored vectors.
func (f *FlatIndex) Count() int {
	return len(f.data) / f.dim
}

// Add appends a copy of v and returns its local index.
func (f *FlatIndex) Add(v []float32) (int, error) {
	if err := f.validate(v); err != nil {
		return -1, err
	}
	idx := f.Count()
	f.data = append(f.data, v...)
	return idx, nil
}

// Vector returns a copy of the vector stored at localIndex.
func (f *FlatIndex) Vector(localIndex int) ([]float32, error) {
	if localIndex < 0 || localIndex >= f.Count() {
		return nil, fmt.Errorf("%w: local index %d", domain.ErrNotFound, localIndex)
	}
	start := localIndex * f.dim
	return slices.Clone(f.data[start : start+f.dim]), nil
}

// Search returns the min(k, Count()) nearest vectors to q, closest first.
// Equal distances are ordered by local index.
func (f *FlatIndex) Search(q []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if err := f.validate(q); err != nil {
		return nil, err
	}

	n := f.Count()
	if n == 0 {
		return []Hit{}, nil
	}
	if k > n {
		k = n
	}

	// Bounded max-heap keeps the k closest seen so far.
	h := make(hitHeap, 0, k)
	for i := 0; i < n; i++ {
		d := squaredL2(q, f.data[i*f.dim:(i+1)*f.dim])
		if len(h) < k {
			heap.Push(&h, Hit{LocalIndex: i, Distance: d})
			continue
		}
		if closer(Hit{LocalIndex: i, Distance: d}, h[0]) {
			h[0] = Hit{LocalIndex: i, Distance: d}
			heap.Fix(&h, 0)
		}
	}

	hits := []Hit(h)
	slices.SortFunc(hits, func(a, b Hit) int {
		if closer(a, b) {
			return -1
		}
		if closer(b, a) {
			return 1
		}
		return 0
	})
	return hits, nil
}

// MarshalBinary encodes the index.
func (f *FlatIndex) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize+len(f.data)*4)
	copy(buf[0:4], vectorMagic)
	binary.LittleEndian.PutUint32(buf[4:8], formatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(f.dim))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(f.Count()))

	off := headerSize
	for _, v := range f.data {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return buf, nil
}

// UnmarshalBinary replaces the index contents with the encoded data.
func (f *FlatIndex) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("vector file truncated: %d bytes", len(data))
	}
	if string(data[0:4]) != vectorMagic {
		return fmt.Errorf("vector file has bad magic %q", data[0:4])
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != formatVersion {
		return fmt.Errorf("vector file version %d not supported", v)
	}

	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint32(data[12:16]))
	if dim <= 0 {
		return fmt.Errorf("vector file has dimension %d", dim)
	}
	if want := headerSize + dim*count*4; len(data) != want {
		return fmt.Errorf("vector file size %d, want %d for %d vectors of dimension %d",
			len(data), want, count, dim)
	}

	vals := make([]float32, dim*count)
	off := headerSize
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}

	f.dim = dim
	f.data = vals
	return nil
}

func (f *FlatIndex) validate(v []float32) error {
	if len(v) != f.dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(v), f.dim)
	}
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("%w: vector contains non-finite values", domain.ErrInvalidArgument)
		}
	}
	return nil
}

// squaredL2 returns the squared Euclidean distance between a and b.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// closer reports whether a ranks before b.
func closer(a, b Hit) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.LocalIndex < b.LocalIndex
}

// hitHeap is a max-heap: the root is the furthest of the kept hits.
type hitHeap []Hit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return closer(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) {
	*h = append(*h, x.(Hit))
}

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
