package assoc

// MapIndex is a plain map-based Index, the Go map doing its own internal
// chaining. This is the default for flatstorectl and for tests: simplest
// to reason about, and fast enough that the chained alternative only
// earns its keep when something other than Go's map needs to own the
// bucket memory (see ChainIndex).
type MapIndex struct {
	m map[string]Handle
}

// NewMapIndex creates a MapIndex with an optional capacity hint.
func NewMapIndex(capHint int) *MapIndex {
	if capHint <= 0 {
		capHint = 1024
	}
	return &MapIndex{m: make(map[string]Handle, capHint)}
}

func (idx *MapIndex) Find(key []byte) (Handle, bool) {
	h, ok := idx.m[makeKey(key)]
	return h, ok
}

func (idx *MapIndex) Insert(key []byte, h Handle) {
	idx.m[makeKey(key)] = h
}

func (idx *MapIndex) Delete(key []byte) {
	delete(idx.m, makeKey(key))
}

func (idx *MapIndex) Stats() Stats {
	bytes := len(idx.m) * 48
	for k := range idx.m {
		bytes += len(k)
	}
	return Stats{Count: len(idx.m), BytesApprox: bytes, Impl: "MapIndex"}
}
