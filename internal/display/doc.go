// Package display draws events in the transverse plane: wire hits, the
// segments left unused and the found tracks with their start trajectories.
// PNG output uses gonum/plot, interactive HTML output uses go-echarts.
package display
