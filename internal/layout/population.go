package layout

import "sync"

// Population is the append-only set of elements. Each element keeps the
// targets computed with the category size at the moment it was added; later
// additions never move existing elements.
type Population struct {
	gen *Generator

	mu        sync.RWMutex
	all       []*Element
	ornaments int
	photos    int
	photoIDs  map[string]struct{}
}

// NewPopulation creates an empty population drawing from gen.
func NewPopulation(gen *Generator) *Population {
	return &Population{gen: gen, photoIDs: make(map[string]struct{})}
}

// AddOrnaments appends k ornaments and returns them.
func (p *Population) AddOrnaments(k int) []*Element {
	if k <= 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.ornaments + k
	added := make([]*Element, 0, k)
	for i := p.ornaments; i < n; i++ {
		added = append(added, p.gen.Ornament(i, n))
	}
	p.ornaments = n
	p.all = append(p.all, added...)
	return added
}

// AddPhotos appends one photo per new id and returns them. Ids already in
// the population are skipped. The first photo ever added becomes the ZOOM
// focus.
func (p *Population) AddPhotos(ids ...string) []*Element {
	if len(ids) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := p.photoIDs[id]; ok {
			continue
		}
		p.photoIDs[id] = struct{}{}
		fresh = append(fresh, id)
	}
	if len(fresh) == 0 {
		return nil
	}

	n := p.photos + len(fresh)
	added := make([]*Element, 0, len(fresh))
	for j, id := range fresh {
		added = append(added, p.gen.Photo(id, p.photos+j, n))
	}
	p.photos = n
	p.all = append(p.all, added...)
	return added
}

// Elements returns every element in insertion order.
func (p *Population) Elements() []*Element {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Element, len(p.all))
	copy(out, p.all)
	return out
}

// Len returns the number of elements of category c.
func (p *Population) Len(c Category) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c == Photo {
		return p.photos
	}
	return p.ornaments
}

// Focus returns the ZOOM focus photo, or nil when there are no photos.
func (p *Population) Focus() *Element {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.all {
		if e.Focus {
			return e
		}
	}
	return nil
}
