package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

func TestNewMetal_FuzznessClamp(t *testing.T) {
	tests := []struct {
		name             string
		inputFuzzness    float64
		expectedFuzzness float64
	}{
		{"Valid fuzzness 0.0", 0.0, 0.0},
		{"Valid fuzzness 0.5", 0.5, 0.5},
		{"Valid fuzzness 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
	}

	albedo := core.NewVec3(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputFuzzness)
			if metal.Fuzzness != tt.expectedFuzzness {
				t.Errorf("Expected fuzzness %f, got %f", tt.expectedFuzzness, metal.Fuzzness)
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	ray := core.NewRay(core.NewVec3(-1, 1, 0), core.NewVec3(1, -1, 0))
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
	}

	result, scattered := metal.Scatter(ray, hit, sampler)
	if !scattered {
		t.Fatal("Expected mirror reflection to scatter")
	}

	expected := core.NewVec3(1, 1, 0).Normalize()
	if result.Scattered.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected direction %v, got %v", expected, result.Scattered.Direction)
	}
	if result.Attenuation != albedo {
		t.Errorf("Expected attenuation %v, got %v", albedo, result.Attenuation)
	}
	if result.Scattered.Origin != hit.Point {
		t.Errorf("Expected scattered origin %v, got %v", hit.Point, result.Scattered.Origin)
	}
}

func TestMetal_FuzzyReflectionStaysAboveSurface(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(3)))

	// Nearly grazing incidence so many perturbations dip below the surface
	ray := core.NewRay(core.NewVec3(-1, 0.05, 0), core.NewVec3(1, -0.05, 0))
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
	}

	absorbed := 0
	for i := 0; i < 1000; i++ {
		result, scattered := metal.Scatter(ray, hit, sampler)
		dot := result.Scattered.Direction.Dot(hit.Normal)
		if scattered != (dot >= 0) {
			t.Fatalf("Scatter flag %t does not match direction dot %f", scattered, dot)
		}
		if !scattered {
			absorbed++
		}
	}

	if absorbed == 0 {
		t.Error("Expected some grazing fuzzy reflections to be absorbed")
	}
}

func TestMetal_BackFaceUsesFacingNormal(t *testing.T) {
	metal := NewMetal(core.NewVec3(1, 1, 1), 0.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	// Ray hits the back of a surface whose outward normal points up
	ray := core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0))
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: false,
	}

	result, scattered := metal.Scatter(ray, hit, sampler)
	if !scattered {
		t.Fatal("Expected back face mirror to scatter")
	}
	if math.Abs(result.Scattered.Direction.Y+1) > 1e-9 {
		t.Errorf("Expected reflection straight down, got %v", result.Scattered.Direction)
	}
}

func TestReflect(t *testing.T) {
	v := core.NewVec3(1, -1, 0)
	n := core.NewVec3(0, 1, 0)
	if r := Reflect(v, n); r != core.NewVec3(1, 1, 0) {
		t.Errorf("Expected (1,1,0), got %v", r)
	}
}
