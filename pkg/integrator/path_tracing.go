package integrator

import (
	"math"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/scene"
)

const (
	// MinHitDistance keeps scattered rays from re-hitting their own surface
	MinHitDistance = 0.001
	// MaxHitDistance is the far limit of every scene query
	MaxHitDistance = 2000.0
)

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single camera ray, following at most
// MaxDepth bounces
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	return pt.rayColor(ray, s, sampler, pt.config.MaxDepth, core.NewVec3(1, 1, 1))
}

func (pt *PathTracingIntegrator) rayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler, depth int, throughput core.Vec3) core.Vec3 {
	hit, isHit := s.Hit(ray, MinHitDistance, MaxHitDistance)
	if !isHit {
		return BackgroundGradient(ray, s.Background)
	}

	// Out of bounces: the path is absorbed
	if depth <= 0 {
		return core.Vec3{}
	}

	shouldTerminate, rrCompensation := pt.applyRussianRoulette(depth, throughput, sampler)
	if shouldTerminate {
		return core.Vec3{}
	}

	scatter, didScatter := s.Material(hit.MaterialID).Scatter(ray, hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}

	newThroughput := throughput.MultiplyVec(scatter.Attenuation)
	incoming := pt.rayColor(scatter.Scattered, s, sampler, depth-1, newThroughput)
	return scatter.Attenuation.MultiplyVec(incoming).Multiply(rrCompensation)
}

// applyRussianRoulette determines if a ray should be terminated and returns the compensation factor
// Returns (shouldTerminate, compensationFactor). Disabled when RussianRouletteMinBounces <= 0,
// in which case no sample is drawn.
func (pt *PathTracingIntegrator) applyRussianRoulette(depth int, throughput core.Vec3, sampler core.Sampler) (bool, float64) {
	if pt.config.RussianRouletteMinBounces <= 0 {
		return false, 1.0
	}

	currentBounce := pt.config.MaxDepth - depth
	if currentBounce < pt.config.RussianRouletteMinBounces {
		return false, 1.0
	}

	// Luminance based survival, kept in [0.5, 0.95] so compensation stays within [1.05x, 2x]
	survivalProb := math.Min(0.95, math.Max(0.5, throughput.Luminance()))

	if sampler.Get1D() > survivalProb {
		return true, 0.0
	}

	return false, 1.0 / survivalProb
}

// BackgroundGradient blends from the background colour straight down to
// white straight up
func BackgroundGradient(r core.Ray, background core.Vec3) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return core.NewVec3(1, 1, 1).Multiply(t).Add(background.Multiply(1.0 - t))
}
