package geometry

import (
	"math"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.ID
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.ID) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, minDist, maxDist float64) (material.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c

	// Negative (or NaN) discriminant: the line misses the sphere
	if !(discriminant >= 0) {
		return material.HitRecord{}, false
	}

	var near, far float64
	if discriminant == 0 {
		near = -b / (2 * a)
		far = near
	} else {
		sqrtD := math.Sqrt(discriminant)
		near = (-b - sqrtD) / (2 * a)
		far = (-b + sqrtD) / (2 * a)
	}

	// The far root is only taken when the near one lies behind the origin. A
	// near root inside (0, minDist] is a self-hit and rejects the sphere.
	root := near
	if root < 0 {
		root = far
		if root < 0 {
			return material.HitRecord{}, false
		}
	}
	if root <= minDist || root >= maxDist {
		return material.HitRecord{}, false
	}

	hit := material.HitRecord{
		Distance:   root,
		Point:      ray.At(root),
		MaterialID: s.Material,
	}

	// Outward normal points from center to hit point
	outwardNormal := hit.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}
