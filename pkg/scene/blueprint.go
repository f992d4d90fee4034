package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/loaders"
	"github.com/df07/go-soa-raytracer/pkg/material"
)

// Vec3Blueprint is a YAML vector, written either as [x, y, z] or {x: , y: , z: }
type Vec3Blueprint core.Vec3

// UnmarshalYAML accepts both the sequence and the mapping form
func (v *Vec3Blueprint) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var seq []float64
	if err := unmarshal(&seq); err == nil {
		if len(seq) != 3 {
			return fmt.Errorf("vector needs 3 components, got %d", len(seq))
		}
		*v = Vec3Blueprint{X: seq[0], Y: seq[1], Z: seq[2]}
		return nil
	}

	var m struct {
		X *float64 `yaml:"x"`
		Y *float64 `yaml:"y"`
		Z *float64 `yaml:"z"`
	}
	if err := unmarshal(&m); err != nil {
		return fmt.Errorf("vector must be [x, y, z] or {x, y, z}: %w", err)
	}
	if m.X == nil || m.Y == nil || m.Z == nil {
		return fmt.Errorf("vector mapping needs x, y and z")
	}
	*v = Vec3Blueprint{X: *m.X, Y: *m.Y, Z: *m.Z}
	return nil
}

// MarshalYAML writes the sequence form
func (v Vec3Blueprint) MarshalYAML() (interface{}, error) {
	return []float64{v.X, v.Y, v.Z}, nil
}

// Vec returns the vector as a core.Vec3
func (v Vec3Blueprint) Vec() core.Vec3 {
	return core.Vec3(v)
}

// CameraBlueprint describes the pinhole camera. LookAt is a view direction
// relative to Position, not a target point.
type CameraBlueprint struct {
	Position      Vec3Blueprint `yaml:"camera_position"`
	LookAt        Vec3Blueprint `yaml:"camera_look_at"`
	Up            Vec3Blueprint `yaml:"camera_up"`
	FocalLengthMM float64       `yaml:"camera_focal_length_mm"`
}

// MaterialBlueprint is shared by spheres and meshes. Type matches by
// case-insensitive substring: "metal", "lambert" or "dielectric".
type MaterialBlueprint struct {
	Type   string         `yaml:"material_type"`
	Albedo *Vec3Blueprint `yaml:"albedo,omitempty"`
	Param  *float64       `yaml:"material_param,omitempty"` // Roughness for metal, refractive index for dielectric
}

// SphereBlueprint describes one sphere
type SphereBlueprint struct {
	Center            Vec3Blueprint `yaml:"center"`
	Radius            float64       `yaml:"radius"`
	MaterialBlueprint `yaml:",inline"`
}

// MeshBlueprint describes a mesh file placed in the scene. Vertices are
// scaled, rotated about X, Y and Z, then translated.
type MeshBlueprint struct {
	File              string        `yaml:"obj_filepath"`
	Scale             float64       `yaml:"scale"`
	Translation       Vec3Blueprint `yaml:"translation"`
	RotationRad       Vec3Blueprint `yaml:"rotation_rad"`
	MaterialBlueprint `yaml:",inline"`
}

// Blueprint is the YAML description of a scene
type Blueprint struct {
	Camera     CameraBlueprint   `yaml:"camera_blueprint"`
	Background *Vec3Blueprint    `yaml:"background,omitempty"`
	Spheres    []SphereBlueprint `yaml:"sphere_blueprints"`
	Meshes     []MeshBlueprint   `yaml:"mesh_blueprints"`
}

// ParseBlueprint decodes a blueprint from YAML
func ParseBlueprint(data []byte) (*Blueprint, error) {
	var bp Blueprint
	if err := yaml.UnmarshalStrict(data, &bp); err != nil {
		return nil, fmt.Errorf("failed to parse scene blueprint: %w", err)
	}
	return &bp, nil
}

// LoadBlueprint reads a blueprint file
func LoadBlueprint(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene blueprint: %w", err)
	}
	return ParseBlueprint(data)
}

// NewMaterial builds the material a blueprint describes
func (mb MaterialBlueprint) NewMaterial() (material.Material, error) {
	kind := strings.ToLower(mb.Type)
	switch {
	case strings.Contains(kind, "metal"):
		if mb.Albedo == nil {
			return nil, fmt.Errorf("metal needs an albedo")
		}
		if mb.Param == nil {
			return nil, fmt.Errorf("metal needs a roughness (material_param)")
		}
		return material.NewMetal(mb.Albedo.Vec(), *mb.Param), nil

	case strings.Contains(kind, "lambert"):
		if mb.Albedo == nil {
			return nil, fmt.Errorf("lambertian needs an albedo")
		}
		return material.NewLambertian(mb.Albedo.Vec()), nil

	case strings.Contains(kind, "dielectric"):
		if mb.Param == nil {
			return nil, fmt.Errorf("dielectric needs a refractive index (material_param)")
		}
		if *mb.Param <= 0 {
			return nil, fmt.Errorf("dielectric refractive index must be positive, got %g", *mb.Param)
		}
		return material.NewDielectric(*mb.Param), nil
	}

	return nil, fmt.Errorf("unknown material type %q, must be one of metal, lambertian or dielectric", mb.Type)
}

// Build creates a scene from the blueprint. Relative mesh paths are resolved
// against baseDir. Meshes are intersected with kernel (the process-wide
// selection when nil).
func (bp *Blueprint) Build(name, baseDir string, kernel geometry.Kernel, logger core.Logger) (*Scene, error) {
	if logger == nil {
		logger = core.NopLogger
	}

	view := bp.Camera.LookAt.Vec()
	if !(view.Length() > 0) {
		return nil, fmt.Errorf("camera look-at direction must be non-zero, got %v", view)
	}

	s := New(name)
	s.CameraConfig = geometry.CameraConfig{
		Position:      bp.Camera.Position.Vec(),
		LookAt:        bp.Camera.Position.Vec().Add(view.Normalize()),
		Up:            bp.Camera.Up.Vec(),
		FocalLengthMM: bp.Camera.FocalLengthMM,
	}
	if bp.Background != nil {
		s.Background = bp.Background.Vec()
	}

	for i, sb := range bp.Spheres {
		if sb.Radius <= 0 {
			return nil, fmt.Errorf("sphere %d: radius must be positive, got %g", i, sb.Radius)
		}
		mat, err := sb.NewMaterial()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		s.AddSphere(sb.Center.Vec(), sb.Radius, mat)
	}

	for i, mb := range bp.Meshes {
		mat, err := mb.NewMaterial()
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}

		path := mb.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := loaders.LoadMesh(path, logger)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		if data.TriangleCount() == 0 {
			logger.Printf("Skipping mesh %s: no triangles\n", mb.File)
			continue
		}

		placed := loaders.Transform{
			Scale:       mb.Scale,
			RotationRad: mb.RotationRad.Vec(),
			Translation: mb.Translation.Vec(),
		}.Apply(data)
		s.AddMesh(placed.Vertices, placed.Faces, mat, kernel)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads a blueprint file and builds its scene
func LoadFile(path string, kernel geometry.Kernel, logger core.Logger) (*Scene, error) {
	bp, err := LoadBlueprint(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := bp.Build(name, filepath.Dir(path), kernel, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
