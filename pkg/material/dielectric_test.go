package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

func TestRefract(t *testing.T) {
	v := core.NewVec3(1, 1, 0).Normalize()
	n := core.NewVec3(-1, 0, 0)

	refracted, ok := Refract(v, n, 1.4)
	if !ok {
		t.Fatal("Expected refraction")
	}

	expected := core.NewVec3(0.14142191, 0.9899495, 0)
	if refracted.Subtract(expected).Length() > 1e-6 {
		t.Errorf("Expected %v, got %v", expected, refracted)
	}
}

func TestRefract_TotalInternalReflection(t *testing.T) {
	n := core.NewVec3(0, 1, 0)

	tests := []struct {
		name       string
		direction  core.Vec3
		eta        float64
		canRefract bool
	}{
		{"head on from glass", core.NewVec3(0, -1, 0), 1.5, true},
		{"shallow from glass", core.NewVec3(1, -0.2, 0), 1.5, false},
		{"shallow into glass", core.NewVec3(1, -0.2, 0), 1 / 1.5, true},
		{"forty five degrees from glass", core.NewVec3(1, -1, 0), 1.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.direction.Normalize()
			dt := v.Dot(n)
			discriminant := 1.0 - tt.eta*tt.eta*(1.0-dt*dt)

			_, ok := Refract(v, n, tt.eta)
			if ok != tt.canRefract {
				t.Errorf("Expected canRefract=%t, got %t", tt.canRefract, ok)
			}
			if ok != (discriminant > 0) {
				t.Errorf("Refraction must fail exactly when discriminant <= 0 (discriminant=%g)", discriminant)
			}
		})
	}
}

func TestSchlick(t *testing.T) {
	if r := Schlick(1.0, 1.5); math.Abs(r-0.04) > 1e-12 {
		t.Errorf("Expected normal incidence reflectance 0.04, got %f", r)
	}
	if r := Schlick(0.0, 1.5); math.Abs(r-1.0) > 1e-12 {
		t.Errorf("Expected grazing reflectance 1.0, got %f", r)
	}

	// Reflectance grows as the angle gets shallower
	prev := Schlick(1.0, 1.5)
	for cos := 0.9; cos >= 0; cos -= 0.1 {
		r := Schlick(cos, 1.5)
		if r < prev {
			t.Errorf("Reflectance decreased at cos=%f: %f < %f", cos, r, prev)
		}
		prev = r
	}
}

func TestDielectric_Scatter(t *testing.T) {
	glass := NewDielectric(1.5)

	rayDirection := core.NewVec3(1, -1, 0)
	ray := core.NewRay(core.NewVec3(-1, 1, 0), rayDirection)

	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Distance:  math.Sqrt2,
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
	}

	hasReflection := false
	hasRefraction := false

	for seed := int64(0); seed < 2000 && (!hasReflection || !hasRefraction); seed++ {
		sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
		result, scattered := glass.Scatter(ray, hit, sampler)

		if !scattered {
			t.Fatal("Dielectric should always scatter")
		}
		if result.Attenuation != core.NewVec3(1, 1, 1) {
			t.Fatalf("Expected white attenuation, got %v", result.Attenuation)
		}

		direction := result.Scattered.Direction
		if math.Abs(direction.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit scattered direction, got length %f", direction.Length())
		}
		if direction.Y > 0 {
			hasReflection = true
		} else {
			hasRefraction = true
		}
	}

	if !hasRefraction {
		t.Error("Expected refraction in at least some cases")
	}
	if !hasReflection {
		t.Error("Expected reflection in at least some cases")
	}
}

func TestDielectric_ExitingTotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Ray travelling inside the glass at a shallow angle to the surface
	ray := core.NewRay(core.NewVec3(-1, -0.2, 0), core.NewVec3(1, 0.2, 0))
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: false,
	}

	for seed := int64(0); seed < 50; seed++ {
		sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
		result, _ := glass.Scatter(ray, hit, sampler)
		if result.Scattered.Direction.Y >= 0 {
			t.Fatalf("Expected total internal reflection back into the glass, got %v", result.Scattered.Direction)
		}
	}
}

func TestDielectric_ExitingNearNormalRefracts(t *testing.T) {
	glass := NewDielectric(1.5)

	// Leaving the glass with cos = 0.9 against the outward normal. The scaled
	// cosine 1.5*0.9 puts the reflectance at about 0.035, below the sample.
	direction := core.NewVec3(math.Sqrt(1-0.81), 0.9, 0)
	ray := core.NewRay(core.NewVec3(0, -1, 0), direction)
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: false,
	}

	result, scattered := glass.Scatter(ray, hit, fixedSampler{value: core.NewVec3(0.038, 0, 0)})
	if !scattered {
		t.Fatal("Dielectric should always scatter")
	}

	reflected := Reflect(ray.Direction, core.NewVec3(0, -1, 0))
	if result.Scattered.Direction.Subtract(reflected).Length() < 1e-9 {
		t.Fatalf("Expected refraction out of the glass, got reflection %v", result.Scattered.Direction)
	}
	if result.Scattered.Direction.Y <= 0 {
		t.Errorf("Expected refracted ray to leave through the top, got %v", result.Scattered.Direction)
	}

	if r := Schlick(1.5*0.9, 1.5); r >= 0.038 || r <= 0.03 {
		t.Errorf("Expected scaled-cosine reflectance near 0.035, got %f", r)
	}
}
