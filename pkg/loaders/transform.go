package loaders

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// Transform places a mesh in the scene: scale first, then rotate about
// X, Y and Z (in that order), then translate.
type Transform struct {
	Scale       float64
	RotationRad core.Vec3
	Translation core.Vec3
}

// Matrix returns the combined homogeneous transform
func (t Transform) Matrix() mgl64.Mat4 {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}

	return mgl64.Translate3D(t.Translation.X, t.Translation.Y, t.Translation.Z).
		Mul4(mgl64.HomogRotate3DZ(t.RotationRad.Z)).
		Mul4(mgl64.HomogRotate3DY(t.RotationRad.Y)).
		Mul4(mgl64.HomogRotate3DX(t.RotationRad.X)).
		Mul4(mgl64.Scale3D(scale, scale, scale))
}

// Apply returns a copy of the mesh with every vertex transformed
func (t Transform) Apply(mesh *MeshData) *MeshData {
	m := t.Matrix()

	out := &MeshData{
		Vertices: make([]core.Vec3, len(mesh.Vertices)),
		Faces:    append([]int(nil), mesh.Faces...),
	}
	for i, v := range mesh.Vertices {
		p := m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1})
		out.Vertices[i] = core.NewVec3(p.X(), p.Y(), p.Z())
	}
	return out
}
