package material

import (
	"github.com/df07/go-soa-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color/reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	normal := hit.FacingNormal()

	// Offsetting the normal by a point in the unit ball gives a cosine-like lobe
	scatterDirection := normal.Add(core.SamplePointInUnitSphere(sampler.Get3D()))
	if scatterDirection.LengthSquared() < 1e-12 {
		scatterDirection = normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.Albedo,
	}, true
}
