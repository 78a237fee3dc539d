// Package cluster groups non-ground depth pixels into discrete obstacles
// using DBSCAN density clustering.
//
// Clustering operates in mixed (u, v, z) space: pixel column, pixel row,
// and normalized depth. Distances are Euclidean in that space, so eps is
// effectively a pixel radius with depth acting as a small separating term.
package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wayband/wayband/internal/depth"
	"github.com/wayband/wayband/internal/geometry"
	"github.com/wayband/wayband/internal/ground"
)

// Obstacle is one connected group of non-ground points. It lives for
// exactly one frame and is never mutated after creation; there is no
// cluster identity across frames.
type Obstacle struct {
	Centroid geometry.Point3D
	Points   []geometry.Point3D
}

// Params holds the DBSCAN parameters.
type Params struct {
	// Eps is the neighborhood radius in (u, v, z) space.
	Eps float64
	// MinSamples is the minimum neighborhood size for a core point.
	MinSamples int
}

// DefaultParams returns parameters tuned for 640x480 normalized depth maps.
func DefaultParams() Params {
	return Params{Eps: 10, MinSamples: 20}
}

// Cluster collects every pixel the mask marks as non-ground and groups the
// resulting point set with DBSCAN. Points that do not belong to any dense
// cluster are discarded as noise so isolated camera speckle never becomes a
// phantom obstacle. An empty non-ground set yields an empty slice.
//
// Membership is deterministic for identical inputs; the output is sorted by
// centroid so repeated runs also agree on order.
func Cluster(m *depth.Map, mask *ground.Mask, params Params) []Obstacle {
	points := collectNonGround(m, mask)
	if len(points) == 0 {
		return nil
	}
	return dbscan(points, params)
}

// collectNonGround walks the mask in row-major order, so the point set is
// in a fixed order for a given frame.
func collectNonGround(m *depth.Map, mask *ground.Mask) []geometry.Point3D {
	var points []geometry.Point3D
	for v := 0; v < m.Height(); v++ {
		for u := 0; u < m.Width(); u++ {
			if mask.IsGround(u, v) {
				continue
			}
			points = append(points, geometry.Point3D{U: float64(u), V: float64(v), Z: m.At(u, v)})
		}
	}
	return points
}

// Point labels used during the scan.
const (
	labelUnvisited = 0
	labelNoise     = -1
)

func dbscan(points []geometry.Point3D, params Params) []Obstacle {
	n := len(points)
	labels := make([]int, n)
	clusterID := 0

	index := newGridIndex(params.Eps)
	index.build(points)

	for i := 0; i < n; i++ {
		if labels[i] != labelUnvisited {
			continue
		}

		neighbors := index.regionQuery(points, i, params.Eps)
		if len(neighbors) < params.MinSamples {
			labels[i] = labelNoise
			continue
		}

		clusterID++
		expandCluster(points, index, labels, i, neighbors, clusterID, params)
	}

	return buildObstacles(points, labels, clusterID)
}

// expandCluster grows a cluster outward from a core point, queue style.
// Noise points reachable from a core point are adopted as border points.
func expandCluster(points []geometry.Point3D, index *gridIndex, labels []int,
	seed int, neighbors []int, clusterID int, params Params) {

	labels[seed] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == labelNoise {
			labels[idx] = clusterID
		}
		if labels[idx] != labelUnvisited {
			continue
		}

		labels[idx] = clusterID
		next := index.regionQuery(points, idx, params.Eps)
		if len(next) >= params.MinSamples {
			neighbors = append(neighbors, next...)
		}
	}
}

func buildObstacles(points []geometry.Point3D, labels []int, maxClusterID int) []Obstacle {
	obstacles := make([]Obstacle, 0, maxClusterID)

	for cid := 1; cid <= maxClusterID; cid++ {
		var members []geometry.Point3D
		for i, label := range labels {
			if label == cid {
				members = append(members, points[i])
			}
		}
		if len(members) == 0 {
			continue
		}
		obstacles = append(obstacles, Obstacle{
			Centroid: centroid(members),
			Points:   members,
		})
	}

	// Sort by centroid so output order is reproducible across runs.
	sort.Slice(obstacles, func(i, j int) bool {
		a, b := obstacles[i].Centroid, obstacles[j].Centroid
		if a.U != b.U {
			return a.U < b.U
		}
		if a.V != b.V {
			return a.V < b.V
		}
		return a.Z < b.Z
	})

	return obstacles
}

// centroid is the component-wise arithmetic mean of the cluster's points.
func centroid(points []geometry.Point3D) geometry.Point3D {
	us := make([]float64, len(points))
	vs := make([]float64, len(points))
	zs := make([]float64, len(points))
	for i, p := range points {
		us[i] = p.U
		vs[i] = p.V
		zs[i] = p.Z
	}
	return geometry.Point3D{
		U: stat.Mean(us, nil),
		V: stat.Mean(vs, nil),
		Z: stat.Mean(zs, nil),
	}
}

// gridIndex is a regular grid over the (u, v) plane used for neighborhood
// queries. Cell size matches eps, so a 3x3 cell neighborhood covers every
// candidate: z contributes to the 3D distance but never exceeds it, meaning
// any 3D neighbor is also within eps in the (u, v) plane.
type gridIndex struct {
	cellSize float64
	grid     map[[2]int64][]int
}

func newGridIndex(cellSize float64) *gridIndex {
	return &gridIndex{cellSize: cellSize, grid: make(map[[2]int64][]int)}
}

func (g *gridIndex) build(points []geometry.Point3D) {
	for i, p := range points {
		cell := g.cellOf(p.U, p.V)
		g.grid[cell] = append(g.grid[cell], i)
	}
}

func (g *gridIndex) cellOf(u, v float64) [2]int64 {
	return [2]int64{int64(math.Floor(u / g.cellSize)), int64(math.Floor(v / g.cellSize))}
}

// regionQuery returns the indices of all points within eps of points[idx],
// including the point itself. Squared distances avoid the sqrt.
func (g *gridIndex) regionQuery(points []geometry.Point3D, idx int, eps float64) []int {
	p := points[idx]
	cell := g.cellOf(p.U, p.V)
	eps2 := eps * eps

	var neighbors []int
	for du := int64(-1); du <= 1; du++ {
		for dv := int64(-1); dv <= 1; dv++ {
			for _, cand := range g.grid[[2]int64{cell[0] + du, cell[1] + dv}] {
				q := points[cand]
				dU := q.U - p.U
				dV := q.V - p.V
				dZ := q.Z - p.Z
				if dU*dU+dV*dV+dZ*dZ <= eps2 {
					neighbors = append(neighbors, cand)
				}
			}
		}
	}
	return neighbors
}
