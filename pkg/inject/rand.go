package inject

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math/rand"
	"sort"
)

// Stream family names. Each defect family draws from its own sub-stream so
// the families stay uncorrelated and parallel chunk processing cannot change
// results for a fixed seed.
const (
	familyOutlier      = "outlier"
	familyMissing      = "missing"
	familyDelay        = "delay"
	familyAvailability = "availability"
)

// Streams derives independent, reproducible random sub-streams from one
// seed, partitioned by defect family and chunk. The allocation is fixed:
// (seed, family, chunk start index) always yields the same stream.
type Streams struct {
	seed int64
}

// NewStreams creates a stream allocator for the given seed.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed}
}

// Chunk returns the sub-stream for one defect family over one chunk.
// chunkStart is the chunk's global row index.
func (s *Streams) Chunk(family string, chunkStart int64) *rand.Rand {
	h := fnv.New64a()
	io.WriteString(h, family)

	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], uint64(s.seed))
	binary.LittleEndian.PutUint64(b[8:], uint64(chunkStart))
	h.Write(b[:])

	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// sample selects k distinct indices from [0,n) without replacement, in
// ascending order so downstream draws are consumed in row order.
func sample(rng *rand.Rand, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	perm := rng.Perm(n)
	picked := append([]int(nil), perm[:k]...)
	sort.Ints(picked)
	return picked
}
