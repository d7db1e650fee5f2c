// Package eventio reads and writes CDC events as JSON or YAML documents.
//
// A document holds a list of events. Each event lists its wire hits once;
// segments and tracks refer to them by ID together with a left/right
// passage hypothesis. Track trajectories are given as perigee parameters
// relative to the detector origin; a track without parameters is fitted
// from its hits on load.
package eventio
