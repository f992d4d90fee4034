package material

import (
	"math"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Clear glass does not absorb
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	unitDirection := rayIn.Direction.Normalize()

	// The sign against the outward normal tells entering from exiting
	var facing core.Vec3
	var eta float64
	if unitDirection.Dot(hit.Normal) > 0 {
		facing = hit.Normal.Negate()
		eta = d.RefractiveIndex
	} else {
		facing = hit.Normal
		eta = 1.0 / d.RefractiveIndex
	}

	reflectProbability := 1.0
	refracted, canRefract := Refract(unitDirection, facing, eta)
	if canRefract {
		// Exiting scales the incident cosine by the index rather than using the
		// transmitted angle, so cosine may exceed one near normal incidence
		cosine := -unitDirection.Dot(facing)
		if eta > 1.0 {
			cosine *= d.RefractiveIndex
		}
		reflectProbability = Schlick(cosine, d.RefractiveIndex)
	}

	var direction core.Vec3
	if sampler.Get1D() < reflectProbability {
		direction = Reflect(unitDirection, facing)
	} else {
		direction = refracted
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}

// Refract bends the unit vector v through a surface with normal n facing v's
// origin, where eta is the ratio of refractive indices (incident over
// transmitted). It reports false on total internal reflection.
func Refract(v, n core.Vec3, eta float64) (core.Vec3, bool) {
	dt := v.Dot(n)
	discriminant := 1.0 - eta*eta*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	refracted := v.Subtract(n.Multiply(dt)).Multiply(eta).Subtract(n.Multiply(math.Sqrt(discriminant)))
	return refracted, true
}

// Schlick approximates Fresnel reflectance for a given cosine and refractive index
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
