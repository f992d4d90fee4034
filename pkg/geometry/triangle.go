package geometry

import (
	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/material"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3   // The three vertices
	Material   material.ID // Material of the triangle
	normal     core.Vec3   // Cached normal vector
	bbox       core.AABB   // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices.
// The normal follows the winding: (V1-V0) x (V2-V0).
func NewTriangle(v0, v1, v2 core.Vec3, mat material.ID) *Triangle {
	t := &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: mat,
	}

	t.normal = v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)

	return t
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, minDist, maxDist float64) (material.HitRecord, bool) {
	epsilon := float64(TriangleEpsilon)

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return material.HitRecord{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return material.HitRecord{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return material.HitRecord{}, false
	}

	distance := f * edge2.Dot(q)
	if distance <= minDist || distance >= maxDist {
		return material.HitRecord{}, false
	}

	hit := material.HitRecord{
		Distance:   distance,
		Point:      ray.At(distance),
		MaterialID: t.Material,
	}
	hit.SetFaceNormal(ray, t.normal)

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// GetNormal returns the triangle's normal vector
func (t *Triangle) GetNormal() core.Vec3 {
	return t.normal
}
