package plan

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance calculates Euclidean distance between two points
func Distance(p1, p2 Point) float64 {
	return planar.Distance(p1.toOrb(), p2.toOrb())
}

// Centroid calculates the arithmetic mean of a set of points
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}

	n := float64(len(points))
	return Point{X: sumX / n, Y: sumY / n}
}

// samePoint reports whether two points coincide within tol
func samePoint(a, b Point, tol float64) bool {
	return Distance(a, b) <= tol
}

// nearlyEqual compares two scalars within tol
func nearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// ToRing converts a point list to a closed orb.Ring
func ToRing(points []Point) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, p.toOrb())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// FromRing converts an orb.Ring back to points, dropping the closing duplicate
func FromRing(ring orb.Ring) []Point {
	n := len(ring)
	if n > 1 && ring[0].Equal(ring[n-1]) {
		n--
	}
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{X: ring[i][0], Y: ring[i][1]}
	}
	return points
}
