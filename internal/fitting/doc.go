// Package fitting owns the local and global geometric fits of CDC hits.
//
// Responsibilities: the weighted facet line fit over drift circle
// observations with its three speed/accuracy modes, the per-event facet
// fit table, and the circle and sz fits that give tracks their start
// trajectories.
// Key types: FacetFitter, FacetFitTable, RiemannFitter.
//
// Dependency rule: fitting may depend on geometry and cdc, never on the
// combiner.
package fitting
