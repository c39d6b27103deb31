package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func square() Polygon {
	return Polygon{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
}

func TestContainsInside(t *testing.T) {
	p := square()
	assert.True(t, p.Contains(Point{5, 5}))
	assert.True(t, p.Contains(Point{0.001, 9.999}))
}

func TestContainsOutside(t *testing.T) {
	p := square()
	assert.False(t, p.Contains(Point{50, 50}))
	assert.False(t, p.Contains(Point{-1, 5}))
	assert.False(t, p.Contains(Point{5, 10.0001}))
}

func TestContainsBoundaryIsInside(t *testing.T) {
	p := square()
	// edges and vertices count as inside
	assert.True(t, p.Contains(Point{0, 5}))
	assert.True(t, p.Contains(Point{10, 10}))
	assert.True(t, p.Contains(Point{5, 0}))
}

func TestValidRejectsDegenerate(t *testing.T) {
	assert.False(t, Polygon{}.Valid())
	assert.False(t, Polygon{{0, 0}, {1, 1}}.Valid())
	assert.True(t, square().Valid())
}

func TestValidRejectsSelfIntersection(t *testing.T) {
	// bowtie: edges (0,0)-(10,10) and (10,0)-(0,10) cross
	bowtie := Polygon{{0, 0}, {10, 10}, {10, 0}, {0, 10}}
	assert.False(t, bowtie.Valid())

	concave := Polygon{{0, 0}, {0, 10}, {5, 5}, {10, 10}, {10, 0}}
	assert.True(t, concave.Valid())
}

func TestContainsConcaveNotch(t *testing.T) {
	concave := Polygon{{0, 0}, {0, 10}, {5, 5}, {10, 10}, {10, 0}}
	assert.True(t, concave.Contains(Point{5, 2}))
	assert.False(t, concave.Contains(Point{5, 9})) // inside the notch, outside the ring
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(1.5, 36.8, 1.5, 36.8), 1e-9)
	// one degree of latitude is ~111km
	assert.InDelta(t, 111.2, HaversineKm(0, 0, 1, 0), 1.0)
}
