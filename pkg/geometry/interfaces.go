package geometry

import (
	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	// Hit returns the intersection with distance strictly inside (minDist, maxDist)
	Hit(ray core.Ray, minDist, maxDist float64) (material.HitRecord, bool)
	BoundingBox() core.AABB
}
