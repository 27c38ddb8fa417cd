// Package vectorindex provides the exact nearest-neighbour index used for
// retrieval, together with the chunk registry that maps each stored vector
// to its chunk.
//
// The index is flat: every search compares the query against every stored
// vector by squared Euclidean distance. Results are exact; cost grows
// linearly with the number of vectors, which is fine up to the low millions
// on a single machine.
//
// Service owns the index and registry as a pair. Vectors are appended and
// registered in one critical section, searched under a read lock, and
// persisted together as two files in one directory:
//
//	vectors.bin       binary vector data in insertion order
//	vectors.map.json  local index -> chunk ID
//
// A pair that fails to load consistently is discarded and the service
// starts empty.
package vectorindex
