package assoc

import "hash/fnv"

// ChainAccessor lets ChainIndex store its collision chains inside the
// engine's own title records instead of allocating bucket-node memory of
// its own. This is the classic memcached assoc-table trick (hash buckets
// of item pointers, collisions resolved via the item's own h_next field)
// expressed as a narrow interface so this package never needs to know
// what a title chunk looks like.
type ChainAccessor interface {
	// Next returns the handle h's title currently chains to.
	Next(h Handle) Handle
	// SetNext rewrites h's chain pointer.
	SetNext(h Handle, next Handle)
	// Key returns the key bytes stored at h, for collision resolution.
	Key(h Handle) []byte
}

const (
	chainInitialBuckets = 16
	chainGrowFactor     = 1 // grow threshold: average chain length
)

// ChainIndex is a separate-chaining hash table whose buckets hold the
// head Handle of each chain; collisions are resolved by walking
// Accessor.Next, exactly as the source's own assoc table does. Use this
// implementation when the title records' h_next field is otherwise idle
// memory and a caller wants to avoid MapIndex's per-entry map overhead.
type ChainIndex struct {
	acc     ChainAccessor
	buckets []Handle
	count   int
}

// NewChainIndex creates a ChainIndex backed by acc.
func NewChainIndex(acc ChainAccessor) *ChainIndex {
	buckets := make([]Handle, chainInitialBuckets)
	for i := range buckets {
		buckets[i] = NoHandle
	}
	return &ChainIndex{acc: acc, buckets: buckets}
}

func (c *ChainIndex) bucketOf(key []byte, nbuckets int) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32()) % nbuckets
}

func (c *ChainIndex) Find(key []byte) (Handle, bool) {
	b := c.bucketOf(key, len(c.buckets))
	for h := c.buckets[b]; h != NoHandle; h = c.acc.Next(h) {
		if string(c.acc.Key(h)) == string(key) {
			return h, true
		}
	}
	return NoHandle, false
}

// Insert links h at the head of its bucket's chain. Callers must Delete
// any prior entry for key first; Insert does not deduplicate, mirroring
// the source table which relies on its caller (item_link) to do so.
func (c *ChainIndex) Insert(key []byte, h Handle) {
	b := c.bucketOf(key, len(c.buckets))
	c.acc.SetNext(h, c.buckets[b])
	c.buckets[b] = h
	c.count++
	c.maybeGrow()
}

func (c *ChainIndex) Delete(key []byte) {
	b := c.bucketOf(key, len(c.buckets))
	var prev Handle = NoHandle
	for h := c.buckets[b]; h != NoHandle; h = c.acc.Next(h) {
		if string(c.acc.Key(h)) == string(key) {
			next := c.acc.Next(h)
			if prev == NoHandle {
				c.buckets[b] = next
			} else {
				c.acc.SetNext(prev, next)
			}
			c.count--
			return
		}
		prev = h
	}
}

func (c *ChainIndex) Stats() Stats {
	return Stats{Count: c.count, BytesApprox: len(c.buckets) * 8, Impl: "ChainIndex"}
}

// maybeGrow doubles the bucket array once the average chain length
// exceeds chainGrowFactor, rehashing every live handle in place.
func (c *ChainIndex) maybeGrow() {
	if c.count <= len(c.buckets)*chainGrowFactor {
		return
	}
	old := c.buckets
	grown := make([]Handle, len(old)*2)
	for i := range grown {
		grown[i] = NoHandle
	}
	c.buckets = grown
	for _, head := range old {
		for h := head; h != NoHandle; {
			next := c.acc.Next(h)
			b := c.bucketOf(c.acc.Key(h), len(grown))
			c.acc.SetNext(h, grown[b])
			grown[b] = h
			h = next
		}
	}
}
