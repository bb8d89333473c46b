package plan

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// PolygonFromWalls walks a set of connected walls and returns the ordered boundary
// points. Endpoints within tol are treated as the same node.
//
// closed is true only when the walk returns to its starting point. An open walk
// returns whatever points were gathered; callers must not use it for area or fill.
// Fewer than 3 walls yield an empty result.
func PolygonFromWalls(walls []Wall, tol float64) (points []Point, closed bool) {
	if len(walls) < 3 {
		return nil, false
	}
	if tol <= 0 {
		tol = DefaultPointTolerance
	}

	start := walls[0].Start
	current := walls[0].End
	visited := make([]bool, len(walls))
	visited[0] = true
	points = []Point{start}

	if samePoint(start, current, tol) {
		// zero-length seed wall; nothing to walk from
		return points, false
	}

	maxSteps := 2 * len(walls)
	for step := 0; step < maxSteps; step++ {
		if samePoint(current, start, tol) {
			return points, len(points) >= 3
		}
		points = append(points, current)

		next, ok := nextUnvisited(walls, visited, current, tol)
		if !ok {
			return points, false
		}
		current = next
	}

	return points, false
}

// nextUnvisited finds an unvisited wall incident to p, marks it and returns its far endpoint
func nextUnvisited(walls []Wall, visited []bool, p Point, tol float64) (Point, bool) {
	for i, w := range walls {
		if visited[i] {
			continue
		}
		switch {
		case samePoint(w.Start, p, tol):
			visited[i] = true
			return w.End, true
		case samePoint(w.End, p, tol):
			visited[i] = true
			return w.Start, true
		}
	}
	return Point{}, false
}

// signedArea returns the shoelace sum over the ring divided by two.
// Positive means clockwise on screen (Y down).
func signedArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

// PolygonArea returns the unsigned shoelace area of a polygon
func PolygonArea(points []Point) float64 {
	return math.Abs(signedArea(points))
}

// PolygonPerimeter returns the summed edge length including the closing edge
func PolygonPerimeter(points []Point) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += Distance(points[i], points[(i+1)%n])
	}
	return sum
}

// PolygonCentroid returns the area-weighted centroid. Degenerate polygons
// (no area) fall back to the mean of their vertices.
func PolygonCentroid(points []Point) Point {
	a := signedArea(points)
	if math.Abs(a) < 1e-9 {
		return Centroid(points)
	}

	var cx, cy float64
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := points[i].X*points[j].Y - points[j].X*points[i].Y
		cx += (points[i].X + points[j].X) * cross
		cy += (points[i].Y + points[j].Y) * cross
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// PointInPolygon tests containment with the even-odd ray casting rule
func PointInPolygon(p Point, polygon []Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// SimplifyOutline removes collinear and near-collinear vertices (within tol)
// from a closed outline. Used for rendering and export only.
func SimplifyOutline(points []Point, tol float64) []Point {
	if len(points) < 4 {
		return points
	}
	ls := orb.LineString(ToRing(points))
	s := simplify.DouglasPeucker(tol).Simplify(ls.Clone())
	result, ok := s.(orb.LineString)
	if !ok || len(result) < 4 {
		return points
	}
	return FromRing(orb.Ring(result))
}
