package cluster

import (
	"math"
	"sort"
	"testing"

	"github.com/wayband/wayband/internal/depth"
	"github.com/wayband/wayband/internal/geometry"
	"github.com/wayband/wayband/internal/ground"
)

// scene builds a depth map and mask where every pixel is ground except the
// given obstacle pixels.
func scene(t *testing.T, width, height int, obstacles map[[2]int]float32) (*depth.Map, *ground.Mask) {
	t.Helper()

	values := make([]float32, width*height)
	mask := ground.NewMask(width, height)
	for v := 0; v < height; v++ {
		for u := 0; u < width; u++ {
			mask.Set(u, v, true)
		}
	}
	for px, z := range obstacles {
		values[px[1]*width+px[0]] = z
		mask.Set(px[0], px[1], false)
	}

	m, err := depth.NewMap(width, height, values)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m, mask
}

// block marks a rectangle of pixels at a constant depth.
func block(obstacles map[[2]int]float32, u0, v0, u1, v1 int, z float32) {
	for v := v0; v < v1; v++ {
		for u := u0; u < u1; u++ {
			obstacles[[2]int{u, v}] = z
		}
	}
}

func TestCluster_AllGroundYieldsNoObstacles(t *testing.T) {
	m, mask := scene(t, 64, 48, nil)

	obstacles := Cluster(m, mask, DefaultParams())
	if len(obstacles) != 0 {
		t.Errorf("expected no obstacles for an all-ground frame, got %d", len(obstacles))
	}
}

func TestCluster_SingleBlock(t *testing.T) {
	pixels := map[[2]int]float32{}
	block(pixels, 20, 20, 30, 30, 0.5)
	m, mask := scene(t, 64, 48, pixels)

	obstacles := Cluster(m, mask, Params{Eps: 3, MinSamples: 5})
	if len(obstacles) != 1 {
		t.Fatalf("expected one obstacle, got %d", len(obstacles))
	}

	obs := obstacles[0]
	if len(obs.Points) != 100 {
		t.Errorf("expected all 100 block pixels in the cluster, got %d", len(obs.Points))
	}
	// Centroid of a 10x10 block starting at 20 is 24.5 in both axes.
	if math.Abs(obs.Centroid.U-24.5) > 1e-9 || math.Abs(obs.Centroid.V-24.5) > 1e-9 {
		t.Errorf("centroid = (%f, %f), want (24.5, 24.5)", obs.Centroid.U, obs.Centroid.V)
	}
	if math.Abs(obs.Centroid.Z-0.5) > 1e-6 {
		t.Errorf("centroid depth = %f, want 0.5", obs.Centroid.Z)
	}
}

func TestCluster_TwoSeparatedBlocks(t *testing.T) {
	pixels := map[[2]int]float32{}
	block(pixels, 5, 5, 12, 12, 0.3)
	block(pixels, 45, 30, 52, 37, 0.8)
	m, mask := scene(t, 64, 48, pixels)

	obstacles := Cluster(m, mask, Params{Eps: 3, MinSamples: 5})
	if len(obstacles) != 2 {
		t.Fatalf("expected two obstacles, got %d", len(obstacles))
	}
	// Output is sorted by centroid, so the low-U block comes first.
	if obstacles[0].Centroid.U > obstacles[1].Centroid.U {
		t.Error("obstacles not sorted by centroid")
	}
}

func TestCluster_NoiseDiscarded(t *testing.T) {
	pixels := map[[2]int]float32{}
	block(pixels, 20, 20, 28, 28, 0.5)
	// A lone speck far from the block must not become a phantom obstacle.
	pixels[[2]int{60, 5}] = 0.1
	m, mask := scene(t, 64, 48, pixels)

	obstacles := Cluster(m, mask, Params{Eps: 3, MinSamples: 5})
	if len(obstacles) != 1 {
		t.Fatalf("expected one obstacle with noise discarded, got %d", len(obstacles))
	}
	for _, p := range obstacles[0].Points {
		if p.U == 60 && p.V == 5 {
			t.Error("noise point absorbed into the cluster")
		}
	}
}

func TestCluster_BelowMinSamplesYieldsNothing(t *testing.T) {
	pixels := map[[2]int]float32{}
	block(pixels, 20, 20, 22, 22, 0.5) // 4 points
	m, mask := scene(t, 64, 48, pixels)

	obstacles := Cluster(m, mask, Params{Eps: 3, MinSamples: 5})
	if len(obstacles) != 0 {
		t.Errorf("expected no obstacles below min samples, got %d", len(obstacles))
	}
}

func TestCluster_NeverSmallerThanMinSamples(t *testing.T) {
	pixels := map[[2]int]float32{}
	block(pixels, 10, 10, 20, 20, 0.4)
	block(pixels, 40, 40, 42, 42, 0.4)
	m, mask := scene(t, 64, 48, pixels)

	params := Params{Eps: 3, MinSamples: 6}
	for _, obs := range Cluster(m, mask, params) {
		if len(obs.Points) < params.MinSamples {
			t.Errorf("cluster of %d points is below min samples %d", len(obs.Points), params.MinSamples)
		}
	}
}

func TestCluster_Deterministic(t *testing.T) {
	pixels := map[[2]int]float32{}
	block(pixels, 5, 5, 15, 15, 0.3)
	block(pixels, 30, 20, 40, 30, 0.7)
	m, mask := scene(t, 64, 48, pixels)

	params := Params{Eps: 3, MinSamples: 5}
	first := Cluster(m, mask, params)
	second := Cluster(m, mask, params)

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !samePointSet(first[i].Points, second[i].Points) {
			t.Errorf("cluster %d membership differs between runs", i)
		}
	}
}

func samePointSet(a, b []geometry.Point3D) bool {
	if len(a) != len(b) {
		return false
	}
	key := func(p geometry.Point3D) [2]float64 { return [2]float64{p.U, p.V} }
	as := make([][2]float64, len(a))
	bs := make([][2]float64, len(b))
	for i := range a {
		as[i] = key(a[i])
		bs[i] = key(b[i])
	}
	less := func(s [][2]float64) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i][0] != s[j][0] {
				return s[i][0] < s[j][0]
			}
			return s[i][1] < s[j][1]
		}
	}
	sort.Slice(as, less(as))
	sort.Slice(bs, less(bs))
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
