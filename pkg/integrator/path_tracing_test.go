package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/material"
	"github.com/df07/go-soa-raytracer/pkg/scene"
)

// countingSampler wraps a sampler and counts draws
type countingSampler struct {
	inner core.Sampler
	draws int
}

func (c *countingSampler) Get1D() float64   { c.draws++; return c.inner.Get1D() }
func (c *countingSampler) Get2D() core.Vec2 { c.draws++; return c.inner.Get2D() }
func (c *countingSampler) Get3D() core.Vec3 { c.draws++; return c.inner.Get3D() }

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance && math.Abs(a.Z-b.Z) <= tolerance
}

// createTestScene creates a simple scene with a sphere for testing
func createTestScene(m material.Material) *scene.Scene {
	s := scene.New("test")
	s.AddSphere(core.NewVec3(0, 0, -10), 1, m)
	return s
}

func TestBackgroundGradient(t *testing.T) {
	bg := core.NewVec3(0.05, 0.05, 0.8)

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 1)},
		{"straight down", core.NewVec3(0, -1, 0), bg},
		{"horizon", core.NewVec3(0, 0, -1), core.NewVec3(0.525, 0.525, 0.9)},
		{"unnormalized", core.NewVec3(0, 0, -7), core.NewVec3(0.525, 0.525, 0.9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.Ray{Origin: core.NewVec3(0, 0, 0), Direction: tt.direction}
			got := BackgroundGradient(ray, bg)
			if !vecClose(got, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPathTracing_MissReturnsGradient(t *testing.T) {
	sc := createTestScene(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	// Ray away from the sphere, even with no bounces left
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0.6, 0.8))
	expected := BackgroundGradient(ray, sc.Background)

	for _, depth := range []int{0, 1, 50} {
		integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: depth})
		got := integrator.RayColor(ray, sc, sampler)
		if got != expected {
			t.Errorf("Depth %d: expected exact gradient %v, got %v", depth, expected, got)
		}
		if got == (core.Vec3{}) {
			t.Errorf("Depth %d: miss must never be black", depth)
		}
	}
}

// TestPathTracingDepthTermination tests that ray depth is properly limited
func TestPathTracingDepthTermination(t *testing.T) {
	sc := createTestScene(material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3)))
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 0})
	if c := integrator.RayColor(ray, sc, sampler); c != (core.Vec3{}) {
		t.Errorf("Expected black color for depth 0, got %v", c)
	}

	integrator = NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 3})
	if c := integrator.RayColor(ray, sc, sampler); c == (core.Vec3{}) {
		t.Error("Expected non-black color for positive depth")
	}
}

func TestPathTracing_MirrorBounce(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.25, 1.0)
	sc := createTestScene(material.NewMetal(albedo, 0))

	// Head-on reflection comes straight back along +z and escapes
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	escaped := BackgroundGradient(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), sc.Background)
	expected := albedo.MultiplyVec(escaped)

	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 1})
	got := integrator.RayColor(ray, sc, core.NewSeededSampler(1))
	if !vecClose(got, expected, 1e-9) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestPathTracing_TrappedPathIsBlack(t *testing.T) {
	// Camera inside a closed white sphere never sees the sky
	sc := scene.New("trapped")
	sc.AddSphere(core.NewVec3(0, 0, 0), 5, material.NewLambertian(core.NewVec3(1, 1, 1)))

	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 8})
	sampler := core.NewSeededSampler(7)
	for i := 0; i < 20; i++ {
		ray := core.NewRay(core.NewVec3(0, 0, 0), core.SamplePointInUnitSphere(sampler.Get3D()))
		if c := integrator.RayColor(ray, sc, sampler); c != (core.Vec3{}) {
			t.Fatalf("Expected black for trapped path, got %v", c)
		}
	}
}

func TestPathTracing_Deterministic(t *testing.T) {
	sc := scene.NewDefaultScene(nil)
	integrator := NewPathTracingIntegrator(sc.SamplingConfig)
	ray := core.NewRay(sc.CameraConfig.Position, sc.CameraConfig.LookAt.Subtract(sc.CameraConfig.Position))

	a := integrator.RayColor(ray, sc, core.NewSeededSampler(99))
	b := integrator.RayColor(ray, sc, core.NewSeededSampler(99))
	if a != b {
		t.Errorf("Expected identical results for identical seeds, got %v and %v", a, b)
	}
	if !a.IsFinite() || a.X < 0 || a.Y < 0 || a.Z < 0 {
		t.Errorf("Expected finite non-negative color, got %v", a)
	}
}

// TestPathTracingRussianRoulette tests Russian roulette termination
func TestPathTracingRussianRoulette(t *testing.T) {
	sc := createTestScene(material.NewLambertian(core.NewVec3(0.3, 0.3, 0.3)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Disabled roulette draws no samples: one draw per diffuse bounce only
	trapped := scene.New("trapped")
	trapped.AddSphere(core.NewVec3(0, 0, 0), 5, material.NewLambertian(core.NewVec3(1, 1, 1)))
	counter := &countingSampler{inner: core.NewSeededSampler(3)}
	NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 10}).RayColor(ray, trapped, counter)
	if counter.draws != 10 {
		t.Errorf("Expected 10 draws for 10 bounces, got %d", counter.draws)
	}

	// Enabled roulette still returns a finite non-negative estimate
	rr := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 10, RussianRouletteMinBounces: 1})
	if c := rr.RayColor(ray, sc, core.NewSeededSampler(3)); !c.IsFinite() || c.X < 0 {
		t.Errorf("Expected finite non-negative color, got %v", c)
	}

	tests := []struct {
		name       string
		throughput core.Vec3
		depth      int
		terminate  bool
		minComp    float64
	}{
		{"before min bounces", core.NewVec3(0.1, 0.1, 0.1), 10, false, 1.0},
		{"bright survives", core.NewVec3(1, 1, 1), 5, false, 1.0 / 0.95},
	}

	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 10, RussianRouletteMinBounces: 3})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Draw of 0.0 never terminates
			terminate, comp := integrator.applyRussianRoulette(tt.depth, tt.throughput, fixedSampler{0})
			if terminate != tt.terminate {
				t.Errorf("Expected terminate=%v, got %v", tt.terminate, terminate)
			}
			if math.Abs(comp-tt.minComp) > 1e-12 {
				t.Errorf("Expected compensation %f, got %f", tt.minComp, comp)
			}
		})
	}

	// Dark path with a high draw is terminated
	terminate, comp := integrator.applyRussianRoulette(2, core.NewVec3(0.01, 0.01, 0.01), fixedSampler{0.9})
	if !terminate || comp != 0 {
		t.Errorf("Expected termination, got terminate=%v comp=%f", terminate, comp)
	}
}

type fixedSampler struct{ value float64 }

func (f fixedSampler) Get1D() float64   { return f.value }
func (f fixedSampler) Get2D() core.Vec2 { return core.NewVec2(f.value, f.value) }
func (f fixedSampler) Get3D() core.Vec3 { return core.NewVec3(f.value, f.value, f.value) }
