package scene

import (
	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/material"
)

// NewDefaultScene creates a default scene with spheres, ground, and camera
func NewDefaultScene(kernel geometry.Kernel) *Scene {
	s := New("default")
	s.CameraConfig = geometry.CameraConfig{
		Position:      core.NewVec3(0, 0.75, 2), // Position camera higher and farther back
		LookAt:        core.NewVec3(0, 0.5, -1), // Look at the sphere center
		Up:            core.NewVec3(0, 1, 0),    // Standard up direction
		FocalLengthMM: 50,
	}
	s.SamplingConfig.SamplesPerPixel = 200

	// Create materials
	lambertianGreen := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	lambertianRed := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	metalSilver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	materialGlass := material.NewDielectric(1.5)

	s.AddSphere(core.NewVec3(0, 0.5, -1), 0.5, lambertianRed)
	s.AddSphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver)
	s.AddSphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold)
	s.AddSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, materialGlass)
	s.AddSphere(core.NewVec3(-0.5, 0.2, -0.4), 0.2, lambertianBlue)

	// Large but finite ground, well inside the integrator's far limit
	s.AddGroundQuad(core.NewVec3(0, 0, 0), 200.0, lambertianGreen, kernel)

	return s
}

// NewGlassScene creates a scene dominated by refraction: a glass sphere and
// a glass cube in front of diffuse and mirror spheres
func NewGlassScene(kernel geometry.Kernel) *Scene {
	s := New("glass")
	s.CameraConfig = geometry.CameraConfig{
		Position:      core.NewVec3(0, 1.2, 3.5),
		LookAt:        core.NewVec3(0, 0.6, 0),
		Up:            core.NewVec3(0, 1, 0),
		FocalLengthMM: 40,
	}
	s.Background = core.NewVec3(0.5, 0.7, 1.0)
	s.SamplingConfig.MaxDepth = 60

	glass := material.NewDielectric(1.5)
	water := material.NewDielectric(1.33)

	s.AddSphere(core.NewVec3(-0.7, 0.6, 0), 0.6, glass)

	cubeVertices, cubeFaces := CubeMesh(core.NewVec3(0.8, 0.45, 0.3), 0.9)
	s.AddMesh(cubeVertices, cubeFaces, water, kernel)

	s.AddSphere(core.NewVec3(0, 0.8, -2.5), 0.8, material.NewMetal(core.NewVec3(0.9, 0.9, 0.9), 0.02))
	s.AddSphere(core.NewVec3(-2, 0.5, -1.5), 0.5, material.NewLambertian(core.NewVec3(0.8, 0.2, 0.2)))
	s.AddSphere(core.NewVec3(2, 0.5, -1.5), 0.5, material.NewLambertian(core.NewVec3(0.2, 0.2, 0.8)))

	s.AddGroundQuad(core.NewVec3(0, 0, 0), 200.0, material.NewLambertian(core.NewVec3(0.6, 0.6, 0.6)), kernel)

	return s
}

// NewMeshScene creates a scene built mostly from procedural triangle meshes
func NewMeshScene(kernel geometry.Kernel) *Scene {
	s := New("meshes")
	s.CameraConfig = geometry.CameraConfig{
		Position:      core.NewVec3(0, 2, 5),
		LookAt:        core.NewVec3(0, 0.5, 0),
		Up:            core.NewVec3(0, 1, 0),
		FocalLengthMM: 35,
	}

	cubeVertices, cubeFaces := CubeMesh(core.NewVec3(-1.3, 0.5, 0), 1.0)
	s.AddMesh(cubeVertices, cubeFaces, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3)), kernel)

	octVertices, octFaces := OctahedronMesh(core.NewVec3(0, 0.8, -0.5), 0.8)
	s.AddMesh(octVertices, octFaces, material.NewMetal(core.NewVec3(0.8, 0.85, 0.9), 0.1), kernel)

	glassVertices, glassFaces := OctahedronMesh(core.NewVec3(1.4, 0.6, 0.2), 0.6)
	s.AddMesh(glassVertices, glassFaces, material.NewDielectric(1.5), kernel)

	s.AddSphere(core.NewVec3(0.2, 0.3, 1.0), 0.3, material.NewLambertian(core.NewVec3(0.2, 0.6, 0.3)))

	s.AddGroundQuad(core.NewVec3(0, 0, 0), 200.0, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), kernel)

	return s
}

// CubeMesh returns an axis-aligned cube with outward facing triangles
func CubeMesh(center core.Vec3, size float64) ([]core.Vec3, []int) {
	h := size / 2
	vertices := make([]core.Vec3, 0, 8)
	for _, corner := range [][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	} {
		vertices = append(vertices, center.Add(core.NewVec3(corner[0]*h, corner[1]*h, corner[2]*h)))
	}

	faces := []int{
		0, 2, 1, 0, 3, 2, // -z
		4, 5, 6, 4, 6, 7, // +z
		0, 4, 7, 0, 7, 3, // -x
		1, 2, 6, 1, 6, 5, // +x
		0, 1, 5, 0, 5, 4, // -y
		3, 7, 6, 3, 6, 2, // +y
	}
	return vertices, faces
}

// OctahedronMesh returns a regular octahedron with outward facing triangles
func OctahedronMesh(center core.Vec3, radius float64) ([]core.Vec3, []int) {
	vertices := []core.Vec3{
		center.Add(core.NewVec3(radius, 0, 0)),
		center.Add(core.NewVec3(-radius, 0, 0)),
		center.Add(core.NewVec3(0, radius, 0)),
		center.Add(core.NewVec3(0, -radius, 0)),
		center.Add(core.NewVec3(0, 0, radius)),
		center.Add(core.NewVec3(0, 0, -radius)),
	}

	faces := make([]int, 0, 24)
	for _, x := range []int{0, 1} {
		for _, y := range []int{2, 3} {
			for _, z := range []int{4, 5} {
				i1, i2 := y, z
				a, b, c := vertices[x], vertices[i1], vertices[i2]
				normal := b.Subtract(a).Cross(c.Subtract(a))
				centroid := a.Add(b).Add(c).Multiply(1.0 / 3.0)
				if normal.Dot(centroid.Subtract(center)) < 0 {
					i1, i2 = i2, i1
				}
				faces = append(faces, x, i1, i2)
			}
		}
	}
	return vertices, faces
}
