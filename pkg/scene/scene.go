package scene

import (
	"fmt"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/material"
)

// DefaultBackground is the horizon colour used when a scene sets none
var DefaultBackground = core.NewVec3(0.05, 0.05, 0.8)

// DefaultMaxDepth bounds the number of bounces per camera ray
const DefaultMaxDepth = 50

// Scene contains all the elements needed for rendering. It is immutable once
// built and shared read-only by every render worker.
type Scene struct {
	Name           string
	CameraConfig   geometry.CameraConfig
	Shapes         []geometry.Shape         // Spheres and standalone triangles
	Meshes         []*geometry.TriangleMesh // Batched triangle meshes
	Materials      *material.Table
	Background     core.Vec3 // Miss colour at the horizon, blended to white overhead
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width                     int // Image width
	Height                    int // Image height
	SamplesPerPixel           int // Number of rays per pixel
	MaxDepth                  int // Maximum ray bounce depth
	RussianRouletteMinBounces int // Bounces before Russian Roulette can activate, 0 disables it
}

// New creates an empty scene with its own material table
func New(name string) *Scene {
	return &Scene{
		Name:       name,
		Materials:  material.NewTable(),
		Background: DefaultBackground,
		SamplingConfig: SamplingConfig{
			Width:           400,
			Height:          225,
			SamplesPerPixel: 100,
			MaxDepth:        DefaultMaxDepth,
		},
	}
}

// Hit returns the closest intersection among all shapes and meshes. Spheres
// and triangles are scanned before meshes; on equal distance the first
// primitive found wins.
func (s *Scene) Hit(ray core.Ray, minDist, maxDist float64) (material.HitRecord, bool) {
	var closest material.HitRecord
	hitAnything := false
	closestSoFar := maxDist

	for _, shape := range s.Shapes {
		if hit, ok := shape.Hit(ray, minDist, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.Distance
			closest = hit
		}
	}

	for _, mesh := range s.Meshes {
		if hit, ok := mesh.Hit(ray, minDist, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.Distance
			closest = hit
		}
	}

	return closest, hitAnything
}

// Material returns the material referenced by a hit record
func (s *Scene) Material(id material.ID) material.Material {
	return s.Materials.Get(id)
}

// AddMaterial registers a material in the scene's table
func (s *Scene) AddMaterial(m material.Material) material.ID {
	return s.Materials.Add(m)
}

// AddSphere adds a sphere with its own material
func (s *Scene) AddSphere(center core.Vec3, radius float64, m material.Material) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, s.AddMaterial(m))
	s.Shapes = append(s.Shapes, sphere)
	return sphere
}

// AddMesh adds a triangle mesh intersected with the given kernel
// (the process-wide selection when nil)
func (s *Scene) AddMesh(vertices []core.Vec3, faces []int, m material.Material, kernel geometry.Kernel) *geometry.TriangleMesh {
	mesh := geometry.NewTriangleMesh(vertices, faces, s.AddMaterial(m), &geometry.TriangleMeshOptions{Kernel: kernel})
	s.Meshes = append(s.Meshes, mesh)
	return mesh
}

// AddGroundQuad adds a horizontal square of two triangles centered at the
// given point with its normal pointing up (0,1,0)
func (s *Scene) AddGroundQuad(center core.Vec3, size float64, m material.Material, kernel geometry.Kernel) *geometry.TriangleMesh {
	half := size / 2
	vertices := []core.Vec3{
		core.NewVec3(center.X-half, center.Y, center.Z-half),
		core.NewVec3(center.X+half, center.Y, center.Z-half),
		core.NewVec3(center.X+half, center.Y, center.Z+half),
		core.NewVec3(center.X-half, center.Y, center.Z+half),
	}
	// Wound so both normals point up
	faces := []int{0, 2, 1, 0, 3, 2}
	return s.AddMesh(vertices, faces, m, kernel)
}

// Validate checks that every primitive refers to a registered material
func (s *Scene) Validate() error {
	check := func(kind string, index int, id material.ID) error {
		if _, err := s.Materials.Lookup(id); err != nil {
			return fmt.Errorf("%s %d: %w", kind, index, err)
		}
		return nil
	}

	for i, shape := range s.Shapes {
		var id material.ID
		switch obj := shape.(type) {
		case *geometry.Sphere:
			id = obj.Material
		case *geometry.Triangle:
			id = obj.Material
		default:
			continue
		}
		if err := check("shape", i, id); err != nil {
			return err
		}
	}
	for i, mesh := range s.Meshes {
		if err := check("mesh", i, mesh.Material()); err != nil {
			return err
		}
	}
	return nil
}

// Bounds returns the box enclosing every shape and mesh
func (s *Scene) Bounds() core.AABB {
	var bounds core.AABB
	first := true
	add := func(box core.AABB) {
		if first {
			bounds = box
			first = false
			return
		}
		bounds = bounds.Union(box)
	}
	for _, shape := range s.Shapes {
		add(shape.BoundingBox())
	}
	for _, mesh := range s.Meshes {
		add(mesh.BoundingBox())
	}
	return bounds
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := len(s.Shapes)
	for _, mesh := range s.Meshes {
		count += mesh.GetTriangleCount()
	}
	return count
}
