package cdc

import (
	"math"
	"testing"

	"github.com/banshee-data/cdc.tracking/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segmentWithHits(n int) *Segment2D {
	seg := &Segment2D{ID: 1, SuperLayer: 2}
	for i := 0; i < n; i++ {
		wh := &WireHit{ID: 10 + i, WirePos: geometry.NewVector2D(float64(i), 3), SuperLayer: 2}
		seg.Hits = append(seg.Hits, RecoHit2D{RLWireHit: NewRLWireHit(wh, geometry.Right), RecoPos2D: wh.WirePos})
	}
	return seg
}

func TestFacetsOf(t *testing.T) {
	assert.Nil(t, FacetsOf(nil, 0))
	assert.Nil(t, FacetsOf(segmentWithHits(2), 0))

	facets := FacetsOf(segmentWithHits(5), 7)
	require.Len(t, facets, 3)
	for i, f := range facets {
		assert.Equal(t, 7+i, f.Index)
		hits := f.Hits()
		assert.Equal(t, 10+i, hits[0].Hit.ID)
		assert.Equal(t, 11+i, hits[1].Hit.ID)
		assert.Equal(t, 12+i, hits[2].Hit.ID)
		assert.Equal(t, hits[1].Pos(), f.SupportPos())
	}
}

func TestRLWireHit(t *testing.T) {
	wh := &WireHit{ID: 1, DriftLength: 0.5, DriftLengthVariance: 0.04}

	right := NewRLWireHit(wh, geometry.Right)
	assert.Equal(t, 0.5, right.SignedDriftLength())
	assert.Equal(t, -0.5, right.Reversed().SignedDriftLength())
	assert.InDelta(t, 25, right.Weight(), 1e-12)

	unknown := NewRLWireHit(wh, geometry.UnknownRL)
	assert.Zero(t, unknown.SignedDriftLength())
	assert.InDelta(t, 0.29, unknown.DriftLengthVariance(), 1e-12)
	assert.True(t, wh.IsAmbiguous())

	exact := NewRLWireHit(&WireHit{ID: 2}, geometry.Left)
	assert.True(t, math.IsInf(exact.Weight(), 1))
}

func TestRLWireHit_ReconstructOn(t *testing.T) {
	wh := &WireHit{ID: 1, DriftLength: 0.5}
	dir := geometry.NewVector2D(2, 0)

	// A wire on the right of a track moving along +x puts the track above it.
	got := NewRLWireHit(wh, geometry.Right).ReconstructOn(dir)
	assert.InDelta(t, 0, got.X, 1e-12)
	assert.InDelta(t, 0.5, got.Y, 1e-12)

	got = NewRLWireHit(wh, geometry.Left).ReconstructOn(dir)
	assert.InDelta(t, -0.5, got.Y, 1e-12)
}

func TestSegment2D(t *testing.T) {
	seg := segmentWithHits(3)
	assert.Equal(t, 3, seg.Len())
	assert.Equal(t, geometry.NewVector2D(0, 3), seg.FrontPos())
	assert.Equal(t, geometry.NewVector2D(2, 3), seg.BackPos())
	assert.InDelta(t, (3+math.Sqrt(10)+math.Sqrt(13))/3, seg.MeanCylindricalR(), 1e-12)
	assert.Len(t, seg.WireHitIDs(), 3)
	assert.Zero(t, (&Segment2D{}).MeanCylindricalR())
}

func TestTrack(t *testing.T) {
	a := &WireHit{ID: 1, SuperLayer: 0}
	b := &WireHit{ID: 2, SuperLayer: 1}
	c := &WireHit{ID: 3, SuperLayer: 1}
	track := NewTrack([]RecoHit3D{
		{RLWireHit: NewRLWireHit(a, geometry.Right), ArcLength2D: 5},
		{RLWireHit: NewRLWireHit(b, geometry.Right), ArcLength2D: 1},
		{RLWireHit: NewRLWireHit(c, geometry.Right), ArcLength2D: 5},
	}, Trajectory3D{})

	assert.NotEmpty(t, track.ID)
	assert.NotEqual(t, track.ID, NewTrack(nil, Trajectory3D{}).ID)
	assert.True(t, track.HasWireHit(2))
	assert.False(t, track.HasWireHit(4))
	assert.Len(t, track.SuperLayers(), 2)

	track.SortByArcLength2D()
	ids := []int{track.Hits[0].Hit.ID, track.Hits[1].Hit.ID, track.Hits[2].Hit.ID}
	assert.Equal(t, []int{2, 1, 3}, ids)
}

func TestTrajectory2D_LocalOrigin(t *testing.T) {
	global := geometry.NewPerigeeCircle(0.02, 0.3, 0)
	origin := global.AtArcLength(10)
	traj := NewTrajectory2D(geometry.NewUncertainPerigeeCircle(global, nil, 0, 0), origin)

	target := global.AtArcLength(25)
	assert.InDelta(t, 15, traj.ArcLength2D(target), 1e-9)
	assert.InDelta(t, 0, traj.Distance(target), 1e-9)

	closest := traj.Closest(target)
	assert.InDelta(t, target.X, closest.X, 1e-9)
	assert.InDelta(t, target.Y, closest.Y, 1e-9)

	back := traj.GlobalCircle()
	assert.InDelta(t, global.Curvature(), back.Curvature(), 1e-12)
	assert.InDelta(t, global.Phi0(), back.Phi0(), 1e-9)
	assert.InDelta(t, global.Impact(), back.Impact(), 1e-9)
	assert.InDelta(t, 50, traj.AbsRadius(), 1e-9)
	assert.NoError(t, traj.Err())
}

func TestTrajectory3D_ZAt(t *testing.T) {
	traj := Trajectory3D{TanLambda: 0.5, Z0: 1}
	assert.Equal(t, 3.0, traj.ZAt(4))

	traj.TanLambda = math.NaN()
	assert.Equal(t, 1.0, traj.ZAt(4))
}
