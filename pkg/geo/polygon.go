package geo

// Point is a WGS84 coordinate pair (degrees).
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon is an ordered ring of vertices. The closing edge from the last
// vertex back to the first is implicit.
type Polygon []Point

// Valid reports whether the ring has enough vertices to enclose area and
// contains no self-intersections.
func (p Polygon) Valid() bool {
	return len(p) >= 3 && p.isSimple()
}

// Contains performs a ray-casting point-in-polygon test. Points lying on an
// edge or vertex count as inside; callers rely on this so an alert raised
// exactly on a fence boundary still routes to that fence.
func (p Polygon) Contains(pt Point) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p[j], p[i]
		if onSegment(a, b, pt) {
			return true
		}
		if (a.Lng > pt.Lng) != (b.Lng > pt.Lng) {
			x := a.Lat + (pt.Lng-a.Lng)/(b.Lng-a.Lng)*(b.Lat-a.Lat)
			if pt.Lat < x {
				inside = !inside
			}
		}
	}
	return inside
}

// isSimple checks every pair of non-adjacent edges for intersection.
// O(n^2) is fine at geofence scale (tens of vertices).
func (p Polygon) isSimple() bool {
	n := len(p)
	for i := 0; i < n; i++ {
		a1 := p[i]
		a2 := p[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// skip adjacent edges (they share a vertex)
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := p[j]
			b2 := p[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

func cross(o, a, b Point) float64 {
	return (a.Lat-o.Lat)*(b.Lng-o.Lng) - (a.Lng-o.Lng)*(b.Lat-o.Lat)
}

func onSegment(a, b, pt Point) bool {
	if cross(a, b, pt) != 0 {
		return false
	}
	return min(a.Lat, b.Lat) <= pt.Lat && pt.Lat <= max(a.Lat, b.Lat) &&
		min(a.Lng, b.Lng) <= pt.Lng && pt.Lng <= max(a.Lng, b.Lng)
}

func segmentsIntersect(a1, a2, b1, b2 Point) bool {
	d1 := cross(a1, a2, b1)
	d2 := cross(a1, a2, b2)
	d3 := cross(b1, b2, a1)
	d4 := cross(b1, b2, a2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	// collinear overlap
	if d1 == 0 && onSegment(a1, a2, b1) {
		return true
	}
	if d2 == 0 && onSegment(a1, a2, b2) {
		return true
	}
	if d3 == 0 && onSegment(b1, b2, a1) {
		return true
	}
	if d4 == 0 && onSegment(b1, b2, a2) {
		return true
	}
	return false
}
