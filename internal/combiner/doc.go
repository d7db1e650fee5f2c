// Package combiner reconciles the tracks and segments found by independent
// pattern recognition passes into one consistent track set per event.
//
// Responsibilities: the nine-phase SegmentTrackCombiner state machine,
// the bookkeeping records wrapping tracks and segments for one pass, the
// pluggable filter capabilities with their config-driven defaults, segment
// trains, the train/track assignment and the final arc length re-sort.
// Key types: SegmentTrackCombiner, Filters, Config.
//
// Dependency rule: combiner may depend on cdc, fitting, geometry and
// config. The taken flag on segments is the only shared mutable state; it
// is written in sequential phase order and never under concurrency.
package combiner
