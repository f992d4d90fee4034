package geometry

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// MaxLanes is the widest kernel width. Batches are padded to a multiple of it,
// which is also a multiple of every narrower width.
const MaxLanes = 8

// TriangleBatch stores triangles as structure-of-arrays float32 lanes.
// Each triangle is kept as its first corner plus the two edges leaving it.
type TriangleBatch struct {
	V0X, V0Y, V0Z []float32 // First corner
	E1X, E1Y, E1Z []float32 // Edge corner1 - corner0
	E2X, E2Y, E2Z []float32 // Edge corner2 - corner0
	NX, NY, NZ    []float32 // Unit normal, (E1 x E2) normalized
	Padding       []bool    // Slots that only exist to fill the last block

	count int
}

// NewTriangleBatch packs triangles into SoA form. Slots past the last real
// triangle duplicate triangle 0 and are flagged as padding.
func NewTriangleBatch(triangles [][3]core.Vec3) *TriangleBatch {
	count := len(triangles)
	padded := count
	if rem := count % MaxLanes; rem != 0 {
		padded += MaxLanes - rem
	}

	b := &TriangleBatch{
		V0X: make([]float32, padded), V0Y: make([]float32, padded), V0Z: make([]float32, padded),
		E1X: make([]float32, padded), E1Y: make([]float32, padded), E1Z: make([]float32, padded),
		E2X: make([]float32, padded), E2Y: make([]float32, padded), E2Z: make([]float32, padded),
		NX: make([]float32, padded), NY: make([]float32, padded), NZ: make([]float32, padded),
		Padding: make([]bool, padded),
		count:   count,
	}

	for i := 0; i < padded; i++ {
		src := i
		if i >= count {
			src = 0
			b.Padding[i] = true
		}
		b.set(i, triangles[src])
	}

	return b
}

func (b *TriangleBatch) set(i int, tri [3]core.Vec3) {
	b.V0X[i], b.V0Y[i], b.V0Z[i] = float32(tri[0].X), float32(tri[0].Y), float32(tri[0].Z)
	b.E1X[i] = float32(tri[1].X) - b.V0X[i]
	b.E1Y[i] = float32(tri[1].Y) - b.V0Y[i]
	b.E1Z[i] = float32(tri[1].Z) - b.V0Z[i]
	b.E2X[i] = float32(tri[2].X) - b.V0X[i]
	b.E2Y[i] = float32(tri[2].Y) - b.V0Y[i]
	b.E2Z[i] = float32(tri[2].Z) - b.V0Z[i]

	nx, ny, nz := cross32(b.E1X[i], b.E1Y[i], b.E1Z[i], b.E2X[i], b.E2Y[i], b.E2Z[i])
	length := math32.Sqrt(dot32(nx, ny, nz, nx, ny, nz))
	if length > 0 {
		nx, ny, nz = nx/length, ny/length, nz/length
	}
	b.NX[i], b.NY[i], b.NZ[i] = nx, ny, nz
}

// Len returns the padded number of slots
func (b *TriangleBatch) Len() int {
	return len(b.V0X)
}

// Count returns the number of real triangles
func (b *TriangleBatch) Count() int {
	return b.count
}

// Normal returns the unit normal of triangle i
func (b *TriangleBatch) Normal(i int) core.Vec3 {
	return core.NewVec3(float64(b.NX[i]), float64(b.NY[i]), float64(b.NZ[i]))
}

// Vertices returns the three corners of triangle i
func (b *TriangleBatch) Vertices(i int) [3]core.Vec3 {
	v0 := core.NewVec3(float64(b.V0X[i]), float64(b.V0Y[i]), float64(b.V0Z[i]))
	e1 := core.NewVec3(float64(b.E1X[i]), float64(b.E1Y[i]), float64(b.E1Z[i]))
	e2 := core.NewVec3(float64(b.E2X[i]), float64(b.E2Y[i]), float64(b.E2Z[i]))
	return [3]core.Vec3{v0, v0.Add(e1), v0.Add(e2)}
}

// dot32 and cross32 round every product to float32 before summing, which
// keeps the compiler from fusing multiply-adds differently per call site.
func dot32(ax, ay, az, bx, by, bz float32) float32 {
	return float32(ax*bx) + float32(ay*by) + float32(az*bz)
}

func cross32(ax, ay, az, bx, by, bz float32) (float32, float32, float32) {
	return float32(ay*bz) - float32(az*by),
		float32(az*bx) - float32(ax*bz),
		float32(ax*by) - float32(ay*bx)
}
