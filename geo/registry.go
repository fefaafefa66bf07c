package geo

import (
	"sync"

	"github.com/youzan/zangeo/index"
)

// Registry hands out GeoRefs for the filters of a query so numeric filters
// can refer back to them without keeping them alive.
type Registry struct {
	sync.RWMutex
	next    index.GeoRef
	filters map[index.GeoRef]*GeoFilter
}

func NewRegistry() *Registry {
	return &Registry{
		filters: make(map[index.GeoRef]*GeoFilter),
	}
}

// Register returns the reference of gf, registering it on first use.
func (r *Registry) Register(gf *GeoFilter) index.GeoRef {
	r.Lock()
	defer r.Unlock()
	if gf.registry == r && gf.ref != 0 {
		return gf.ref
	}
	r.next++
	gf.ref = r.next
	gf.registry = r
	r.filters[gf.ref] = gf
	return gf.ref
}

// Lookup returns nil for references which are unknown or released.
func (r *Registry) Lookup(ref index.GeoRef) *GeoFilter {
	r.RLock()
	gf := r.filters[ref]
	r.RUnlock()
	return gf
}

func (r *Registry) Release(ref index.GeoRef) {
	r.Lock()
	delete(r.filters, ref)
	r.Unlock()
}

func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.filters)
}

func (r *Registry) ContainsGeo(ref index.GeoRef, v float64) (bool, bool) {
	gf := r.Lookup(ref)
	if gf == nil {
		return false, false
	}
	return gf.Contains(v), true
}
