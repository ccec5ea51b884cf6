package store

import (
	"log/slog"

	"github.com/Mactus/memcached/assoc"
)

// titleChainAccessor lets an assoc.ChainIndex store its collision
// chains inside this engine's own title records (the title.hNext
// field) instead of allocating bucket-node memory of its own.
type titleChainAccessor struct {
	e *Engine
}

func (a *titleChainAccessor) Next(h assoc.Handle) assoc.Handle {
	p := decodeHandle(h)
	if p.IsNone() {
		return assoc.NoHandle
	}
	return encodeHandle(a.e.titleAt(p).hNext)
}

func (a *titleChainAccessor) SetNext(h, next assoc.Handle) {
	p := decodeHandle(h)
	a.e.titleAt(p).hNext = decodeHandle(next)
}

func (a *titleChainAccessor) Key(h assoc.Handle) []byte {
	p := decodeHandle(h)
	return a.e.keyBytes(p)
}

// NewEngineChained builds an Engine whose index is an assoc.ChainIndex
// backed directly by item titles, avoiding the per-entry map overhead
// MapIndex pays. It briefly constructs the engine with an empty
// placeholder index, which is safe because no item exists yet.
func NewEngineChained(cfg Config, log *slog.Logger) (*Engine, error) {
	e, err := NewEngine(cfg, assoc.NewMapIndex(0), log)
	if err != nil {
		return nil, err
	}
	e.index = assoc.NewChainIndex(&titleChainAccessor{e: e})
	return e, nil
}
