package catalog

import (
	"sync/atomic"

	"msku-service/internal/resolve/suggest"
)

// atomicIndex lets lookups read the suggestion index while a writer swaps it.
type atomicIndex struct {
	p atomic.Pointer[suggest.Index]
}

func (a *atomicIndex) load() *suggest.Index {
	if idx := a.p.Load(); idx != nil {
		return idx
	}
	return suggest.New(nil)
}

func (a *atomicIndex) store(idx *suggest.Index) { a.p.Store(idx) }
