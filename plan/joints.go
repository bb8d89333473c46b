package plan

import "sort"

// WallEnd names one endpoint of a wall
type WallEnd string

const (
	WallStart    WallEnd = "start"
	WallEndpoint WallEnd = "end"
)

// JointMember is one wall endpoint that belongs to a joint
type JointMember struct {
	WallID string  `json:"wallId"`
	End    WallEnd `json:"end"`
}

// Joint is a junction where two or more wall endpoints coincide
type Joint struct {
	Position Point         `json:"position"`
	Members  []JointMember `json:"members"`
}

// HasWall reports whether any endpoint of the wall belongs to this joint
func (j Joint) HasWall(wallID string) bool {
	for _, m := range j.Members {
		if m.WallID == wallID {
			return true
		}
	}
	return false
}

type endpoint struct {
	member JointMember
	point  Point
}

func collectEndpoints(walls []Wall) []endpoint {
	eps := make([]endpoint, 0, 2*len(walls))
	for _, w := range walls {
		eps = append(eps,
			endpoint{member: JointMember{WallID: w.ID, End: WallStart}, point: w.Start},
			endpoint{member: JointMember{WallID: w.ID, End: WallEndpoint}, point: w.End},
		)
	}
	return eps
}

func newJoint(group []endpoint) Joint {
	pts := make([]Point, len(group))
	members := make([]JointMember, len(group))
	for i, e := range group {
		pts[i] = e.point
		members[i] = e.member
	}
	return Joint{Position: Centroid(pts), Members: members}
}

// DetectJoints clusters wall endpoints lying within tol of each other.
//
// This is a single pass: each unvisited endpoint seeds a group of every other
// unvisited endpoint within tol of the seed. Group members are not re-checked
// against each other, so chains of near-tolerance points may split. Groups of
// two or more become joints positioned at their centroid.
func DetectJoints(walls []Wall, tol float64) []Joint {
	if tol <= 0 {
		tol = DefaultJointTolerance
	}
	eps := collectEndpoints(walls)
	visited := make([]bool, len(eps))

	var joints []Joint
	for i := range eps {
		if visited[i] {
			continue
		}
		visited[i] = true
		group := []endpoint{eps[i]}

		for j := i + 1; j < len(eps); j++ {
			if visited[j] {
				continue
			}
			if samePoint(eps[i].point, eps[j].point, tol) {
				visited[j] = true
				group = append(group, eps[j])
			}
		}

		if len(group) >= 2 {
			joints = append(joints, newJoint(group))
		}
	}
	return joints
}

// DetectJointsUnionFind clusters endpoints transitively: any two endpoints within
// tol end up in the same joint, regardless of visiting order.
func DetectJointsUnionFind(walls []Wall, tol float64) []Joint {
	if tol <= 0 {
		tol = DefaultJointTolerance
	}
	eps := collectEndpoints(walls)

	parent := make([]int, len(eps))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := range eps {
		for j := i + 1; j < len(eps); j++ {
			if samePoint(eps[i].point, eps[j].point, tol) {
				ri, rj := find(i), find(j)
				if ri != rj {
					// keep the lowest index as root so output order is stable
					if ri < rj {
						parent[rj] = ri
					} else {
						parent[ri] = rj
					}
				}
			}
		}
	}

	groups := make(map[int][]endpoint)
	var roots []int
	for i := range eps {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], eps[i])
	}
	sort.Ints(roots)

	var joints []Joint
	for _, r := range roots {
		if len(groups[r]) >= 2 {
			joints = append(joints, newJoint(groups[r]))
		}
	}
	return joints
}

// DetectJointsWith dispatches on the configured clustering strategy
func DetectJointsWith(walls []Wall, s Settings) []Joint {
	s = s.withDefaults()
	if s.JointClustering == ClusterUnionFind {
		return DetectJointsUnionFind(walls, s.JointTolerance)
	}
	return DetectJoints(walls, s.JointTolerance)
}
