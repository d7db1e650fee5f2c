// Package cdc owns the per-event data model of the central drift chamber
// track finding.
//
// Responsibilities: wire hits and their left/right interpretations,
// facets, 2D segments, 3D tracks and their trajectories.
// Key types: WireHit, RLWireHit, Facet, Segment2D, Track, Event.
//
// Wire hits are immutable once the event is built. The only field mutated
// while the segment/track combination runs is Segment2D.Taken.
package cdc
