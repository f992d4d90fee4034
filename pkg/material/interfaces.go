package material

import (
	"github.com/df07/go-soa-raytracer/pkg/core"
)

// Material interface for objects that can scatter rays
type Material interface {
	// Scatter returns the attenuation and continuation ray, or false if the
	// ray is absorbed
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point      core.Vec3 // Point of intersection
	Normal     core.Vec3 // Geometric outward normal of the primitive
	Distance   float64   // Ray parameter at the hit
	FrontFace  bool      // Whether the ray arrived against the outward normal
	MaterialID ID        // Index into the scene's material table
}

// SetFaceNormal stores the outward normal and records which side the ray came from
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.Normal = outwardNormal
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
}

// FacingNormal returns the normal flipped to the side the ray arrived from
func (h HitRecord) FacingNormal() core.Vec3 {
	if h.FrontFace {
		return h.Normal
	}
	return h.Normal.Negate()
}
