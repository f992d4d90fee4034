package geometry

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/chewxy/math32"
	"golang.org/x/sys/cpu"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

const (
	// TriangleEpsilon is the Möller-Trumbore determinant threshold below which
	// a ray counts as parallel to a triangle's plane. It is separate from the
	// minimum hit distance: the determinant scales with triangle area, so a
	// threshold of 0.001 would drop small mesh triangles.
	TriangleEpsilon float32 = 1e-7

	// MissSentinel is blended into lanes that have no valid intersection
	MissSentinel float32 = -1000
)

// Kernel finds the nearest triangle of a batch hit by a ray. Every
// implementation performs the same float32 operations per triangle, so all
// kernels return identical results for identical input.
type Kernel interface {
	Name() string
	Lanes() int
	// Intersect returns the index and distance of the nearest triangle with
	// distance in (minDist, maxDist), or -1 if there is none.
	Intersect(b *TriangleBatch, ray core.Ray, minDist, maxDist float32) (int, float32)
}

var (
	// ScalarKernel tests one triangle at a time with early exits
	ScalarKernel Kernel = scalarKernel{}
	// Lanes4Kernel evaluates blocks of 4 triangles with mask blending
	Lanes4Kernel Kernel = laneKernel{width: 4}
	// Lanes8Kernel evaluates blocks of 8 triangles with mask blending
	Lanes8Kernel Kernel = laneKernel{width: 8}
)

var (
	selectOnce     sync.Once
	selectedKernel Kernel
)

// SelectKernel picks the widest kernel the host CPU has vector units for.
// Detection runs once per process.
func SelectKernel() Kernel {
	selectOnce.Do(func() {
		selectedKernel = detectKernel()
	})
	return selectedKernel
}

func detectKernel() Kernel {
	switch {
	case cpu.X86.HasAVX:
		return Lanes8Kernel
	case cpu.X86.HasSSE2, cpu.ARM64.HasASIMD:
		return Lanes4Kernel
	default:
		return ScalarKernel
	}
}

// KernelByName resolves a configured kernel name. "auto" and "" select by CPU.
func KernelByName(name string) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return SelectKernel(), nil
	case "scalar":
		return ScalarKernel, nil
	case "lanes4", "sse":
		return Lanes4Kernel, nil
	case "lanes8", "avx":
		return Lanes8Kernel, nil
	default:
		return nil, fmt.Errorf("unknown intersection kernel %q", name)
	}
}

// Kernels lists every available kernel
func Kernels() []Kernel {
	return []Kernel{ScalarKernel, Lanes4Kernel, Lanes8Kernel}
}

type ray32 struct {
	ox, oy, oz float32
	dx, dy, dz float32
}

func newRay32(r core.Ray) ray32 {
	return ray32{
		ox: float32(r.Origin.X), oy: float32(r.Origin.Y), oz: float32(r.Origin.Z),
		dx: float32(r.Direction.X), dy: float32(r.Direction.Y), dz: float32(r.Direction.Z),
	}
}

type scalarKernel struct{}

func (scalarKernel) Name() string { return "scalar" }
func (scalarKernel) Lanes() int   { return 1 }

func (scalarKernel) Intersect(b *TriangleBatch, ray core.Ray, minDist, maxDist float32) (int, float32) {
	r := newRay32(ray)
	best := -1
	bestT := maxDist

	// Padding sits past count, so the scalar path never visits it
	for i := 0; i < b.count; i++ {
		hx, hy, hz := cross32(r.dx, r.dy, r.dz, b.E2X[i], b.E2Y[i], b.E2Z[i])
		a := dot32(b.E1X[i], b.E1Y[i], b.E1Z[i], hx, hy, hz)
		if math32.Abs(a) < TriangleEpsilon {
			continue
		}

		f := 1 / a
		sx, sy, sz := r.ox-b.V0X[i], r.oy-b.V0Y[i], r.oz-b.V0Z[i]
		u := f * dot32(sx, sy, sz, hx, hy, hz)
		if u < 0 || u > 1 {
			continue
		}

		qx, qy, qz := cross32(sx, sy, sz, b.E1X[i], b.E1Y[i], b.E1Z[i])
		v := f * dot32(r.dx, r.dy, r.dz, qx, qy, qz)
		if v < 0 || u+v > 1 {
			continue
		}

		t := f * dot32(b.E2X[i], b.E2Y[i], b.E2Z[i], qx, qy, qz)
		if t > minDist && t < bestT {
			best, bestT = i, t
		}
	}

	return best, bestT
}

// laneKernel processes width triangles per step. Every stage runs across all
// lanes before the next one starts, failing lanes are not skipped but masked.
type laneKernel struct {
	width int
}

func (k laneKernel) Name() string { return fmt.Sprintf("lanes%d", k.width) }
func (k laneKernel) Lanes() int   { return k.width }

func (k laneKernel) Intersect(b *TriangleBatch, ray core.Ray, minDist, maxDist float32) (int, float32) {
	r := newRay32(ray)
	best := -1
	bestT := maxDist

	var out [MaxLanes]float32
	for base := 0; base < b.Len(); base += k.width {
		intersectBlock(b, base, k.width, r, minDist, maxDist, out[:k.width])

		// Smallest value above the epsilon wins, padding never does
		for l := 0; l < k.width; l++ {
			t := out[l]
			if t > minDist && t < bestT && !b.Padding[base+l] {
				best, bestT = base+l, t
			}
		}
	}

	return best, bestT
}

// intersectBlock writes, for each lane, the hit distance or MissSentinel
func intersectBlock(b *TriangleBatch, base, width int, r ray32, minDist, maxDist float32, out []float32) {
	var hx, hy, hz, a, f [MaxLanes]float32
	var sx, sy, sz, u, v, t [MaxLanes]float32
	var qx, qy, qz [MaxLanes]float32
	var mask [MaxLanes]uint32

	for l := 0; l < width; l++ {
		i := base + l
		hx[l], hy[l], hz[l] = cross32(r.dx, r.dy, r.dz, b.E2X[i], b.E2Y[i], b.E2Z[i])
	}
	for l := 0; l < width; l++ {
		i := base + l
		a[l] = dot32(b.E1X[i], b.E1Y[i], b.E1Z[i], hx[l], hy[l], hz[l])
		f[l] = 1 / a[l]
	}
	for l := 0; l < width; l++ {
		i := base + l
		sx[l], sy[l], sz[l] = r.ox-b.V0X[i], r.oy-b.V0Y[i], r.oz-b.V0Z[i]
		u[l] = f[l] * dot32(sx[l], sy[l], sz[l], hx[l], hy[l], hz[l])
	}
	for l := 0; l < width; l++ {
		i := base + l
		qx[l], qy[l], qz[l] = cross32(sx[l], sy[l], sz[l], b.E1X[i], b.E1Y[i], b.E1Z[i])
		v[l] = f[l] * dot32(r.dx, r.dy, r.dz, qx[l], qy[l], qz[l])
		t[l] = f[l] * dot32(b.E2X[i], b.E2Y[i], b.E2Z[i], qx[l], qy[l], qz[l])
	}

	// has = !(parallel | outsideU | outsideV) & inFront
	for l := 0; l < width; l++ {
		parallel := laneMask(math32.Abs(a[l]) < TriangleEpsilon)
		outsideU := laneMask(u[l] < 0 || u[l] > 1)
		outsideV := laneMask(v[l] < 0 || u[l]+v[l] > 1)
		inFront := laneMask(t[l] > minDist && t[l] < maxDist)
		mask[l] = inFront &^ (parallel | outsideU | outsideV)
	}

	sentinel := math.Float32bits(MissSentinel)
	for l := 0; l < width; l++ {
		bits := math.Float32bits(t[l])&mask[l] | sentinel&^mask[l]
		out[l] = math.Float32frombits(bits)
	}
}

func laneMask(cond bool) uint32 {
	if cond {
		return ^uint32(0)
	}
	return 0
}
