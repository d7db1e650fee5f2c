package fitting

// FacetFitTable caches facet fits of one event by facet index. The table
// owns the fits; facets refer to them only through their index.
type FacetFitTable struct {
	fits  []LocalFit
	valid []bool
}

// NewFacetFitTable preallocates room for n facets.
func NewFacetFitTable(n int) *FacetFitTable {
	return &FacetFitTable{
		fits:  make([]LocalFit, n),
		valid: make([]bool, n),
	}
}

// Store records the fit for facet index idx, growing the table if needed.
func (t *FacetFitTable) Store(idx int, fit LocalFit) {
	if idx < 0 {
		return
	}
	for idx >= len(t.fits) {
		t.fits = append(t.fits, LocalFit{})
		t.valid = append(t.valid, false)
	}
	t.fits[idx] = fit
	t.valid[idx] = true
}

// Lookup returns the cached fit of facet idx.
func (t *FacetFitTable) Lookup(idx int) (LocalFit, bool) {
	if idx < 0 || idx >= len(t.fits) || !t.valid[idx] {
		return LocalFit{}, false
	}
	return t.fits[idx], true
}

// Len is the number of facets with a cached fit.
func (t *FacetFitTable) Len() int {
	n := 0
	for _, ok := range t.valid {
		if ok {
			n++
		}
	}
	return n
}

// Reset drops all fits but keeps the allocation for the next event.
func (t *FacetFitTable) Reset() {
	for i := range t.fits {
		t.fits[i] = LocalFit{}
		t.valid[i] = false
	}
}
