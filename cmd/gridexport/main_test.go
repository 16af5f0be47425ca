package main

import (
	"testing"

	"geotagger/pkg/geo"
)

func TestRegionRingCoversExpectedSpan(t *testing.T) {
	params := geo.Params{DegreesPerRegion: 10, WidthOfStatRegion: 2}
	ring := regionRing(params, geo.TileIndex{I: 1, J: 3})

	if len(ring) != 5 {
		t.Fatalf("expected a closed ring of 5 points, got %d", len(ring))
	}
	if ring[0] != ring[4] {
		t.Errorf("expected ring to close on itself, got %v != %v", ring[0], ring[4])
	}

	wantMinLong, wantMinLat := 30.0, 10.0
	wantMaxLong, wantMaxLat := 50.0, 30.0
	if ring[0][0] != wantMinLong || ring[0][1] != wantMinLat {
		t.Errorf("expected SW corner (%v, %v), got %v", wantMinLong, wantMinLat, ring[0])
	}
	if ring[2][0] != wantMaxLong || ring[2][1] != wantMaxLat {
		t.Errorf("expected NE corner (%v, %v), got %v", wantMaxLong, wantMaxLat, ring[2])
	}
}

func TestBoundaryRingMatchesBoundingBoxCorners(t *testing.T) {
	b := geo.EmptyBoundingBox()
	b = b.Extend(geo.Coord{Lat: 10, Long: 20})
	b = b.Extend(geo.Coord{Lat: 15, Long: 25})

	ring := boundaryRing(b)
	if ring[0][0] != 20 || ring[0][1] != 10 {
		t.Errorf("expected SW corner (20, 10), got %v", ring[0])
	}
	if ring[2][0] != 25 || ring[2][1] != 15 {
		t.Errorf("expected NE corner (25, 15), got %v", ring[2])
	}
}
