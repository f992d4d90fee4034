package geometry

import (
	"math"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/material"
)

// TriangleMesh represents a collection of triangles tested in SoA batches.
// A single bounding box gates the batch scan.
type TriangleMesh struct {
	batch    *TriangleBatch
	bbox     core.AABB
	material material.ID
	kernel   Kernel
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Rotation *core.Vec3 // Optional rotation to apply to vertices
	Center   *core.Vec3 // Optional center point for rotation
	Kernel   Kernel     // Intersection kernel, SelectKernel() when nil
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices
// vertices: array of 3D points
// faces: array of triangle indices (each group of 3 indices forms a triangle)
// mat: material for all triangles
// options: optional parameters (can be nil for basic mesh)
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat material.ID, options *TriangleMeshOptions) *TriangleMesh {
	if len(faces)%3 != 0 {
		panic("Face indices must be a multiple of 3")
	}

	// Apply rotation if specified
	workingVertices := vertices
	if options != nil && options.Rotation != nil {
		workingVertices = make([]core.Vec3, len(vertices))
		for i, vertex := range vertices {
			// Translate to center, rotate, then translate back
			if options.Center != nil {
				vertex = vertex.Subtract(*options.Center)
			}
			vertex = rotateVertex(vertex, *options.Rotation)
			if options.Center != nil {
				vertex = vertex.Add(*options.Center)
			}
			workingVertices[i] = vertex
		}
	}

	numTriangles := len(faces) / 3
	triangles := make([][3]core.Vec3, numTriangles)
	points := make([]core.Vec3, 0, len(faces))

	for i := 0; i < numTriangles; i++ {
		var tri [3]core.Vec3
		for k := 0; k < 3; k++ {
			index := faces[i*3+k]
			if index < 0 || index >= len(workingVertices) {
				panic("Face index out of bounds")
			}
			tri[k] = workingVertices[index]
			points = append(points, tri[k])
		}
		triangles[i] = tri
	}

	kernel := SelectKernel()
	if options != nil && options.Kernel != nil {
		kernel = options.Kernel
	}

	return &TriangleMesh{
		batch:    NewTriangleBatch(triangles),
		bbox:     core.NewAABBFromPoints(points...),
		material: mat,
		kernel:   kernel,
	}
}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, minDist, maxDist float64) (material.HitRecord, bool) {
	if tm.batch.Count() == 0 || !tm.bbox.Hit(ray) {
		return material.HitRecord{}, false
	}

	index, t := tm.kernel.Intersect(tm.batch, ray, float32(minDist), float32(maxDist))
	if index < 0 {
		return material.HitRecord{}, false
	}

	// float32 rounding of the window bounds can let an edge value through
	distance := float64(t)
	if distance <= minDist || distance >= maxDist {
		return material.HitRecord{}, false
	}

	hit := material.HitRecord{
		Distance:   distance,
		Point:      ray.At(distance),
		MaterialID: tm.material,
	}
	hit.SetFaceNormal(ray, tm.batch.Normal(index))

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// GetTriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return tm.batch.Count()
}

// Material returns the material shared by all triangles of the mesh
func (tm *TriangleMesh) Material() material.ID {
	return tm.material
}

// Kernel returns the intersection kernel this mesh was built with
func (tm *TriangleMesh) Kernel() Kernel {
	return tm.kernel
}

// Batch exposes the SoA storage, mainly for kernel comparisons
func (tm *TriangleMesh) Batch() *TriangleBatch {
	return tm.batch
}

// rotateVertex applies rotation around X, Y, Z axes (in that order)
func rotateVertex(vertex, rotation core.Vec3) core.Vec3 {
	if rotation.X != 0 {
		cos := math.Cos(rotation.X)
		sin := math.Sin(rotation.X)
		y := vertex.Y*cos - vertex.Z*sin
		z := vertex.Y*sin + vertex.Z*cos
		vertex = core.NewVec3(vertex.X, y, z)
	}

	if rotation.Y != 0 {
		cos := math.Cos(rotation.Y)
		sin := math.Sin(rotation.Y)
		x := vertex.X*cos + vertex.Z*sin
		z := -vertex.X*sin + vertex.Z*cos
		vertex = core.NewVec3(x, vertex.Y, z)
	}

	if rotation.Z != 0 {
		cos := math.Cos(rotation.Z)
		sin := math.Sin(rotation.Z)
		x := vertex.X*cos - vertex.Y*sin
		y := vertex.X*sin + vertex.Y*cos
		vertex = core.NewVec3(x, y, vertex.Z)
	}

	return vertex
}
