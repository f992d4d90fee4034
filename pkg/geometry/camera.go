package geometry

import (
	"math"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// SensorWidthMM is the width of a full-frame 35mm sensor
const SensorWidthMM = 35.0

// CameraConfig describes a pinhole camera in scene units
type CameraConfig struct {
	Position      core.Vec3 // Eye position
	LookAt        core.Vec3 // Point the camera is aimed at
	Up            core.Vec3 // Approximate up direction
	FocalLengthMM float64   // Lens focal length, 35mm equivalent
}

// Camera is a pinhole camera with a 35mm sensor. Rays leave the eye through a
// jittered point of the requested pixel.
type Camera struct {
	position      core.Vec3
	right         core.Vec3
	up            core.Vec3
	forward       core.Vec3
	focalLength   float64
	sensorWidth   float64
	sensorHeight  float64
	width, height int
}

// NewCamera creates a camera producing rays for a width x height image
func NewCamera(config CameraConfig, width, height int) *Camera {
	forward := config.LookAt.Subtract(config.Position).Normalize()

	right := forward.Cross(config.Up).Normalize()
	if right.LengthSquared() == 0 {
		// Up is parallel to the view direction, pick any perpendicular axis
		alt := core.NewVec3(0, 0, 1)
		if math.Abs(forward.Z) > 0.9 {
			alt = core.NewVec3(1, 0, 0)
		}
		right = forward.Cross(alt).Normalize()
	}
	up := right.Cross(forward)

	focal := config.FocalLengthMM
	if focal <= 0 {
		focal = 35.0
	}

	return &Camera{
		position:     config.Position,
		right:        right,
		up:           up,
		forward:      forward,
		focalLength:  focal,
		sensorWidth:  SensorWidthMM,
		sensorHeight: SensorWidthMM * float64(height) / float64(width),
		width:        width,
		height:       height,
	}
}

// GetRayThroughPixel returns a unit ray through a random point of pixel (row, col).
// Row 0 is the top of the image.
func (c *Camera) GetRayThroughPixel(row, col int, sampler core.Sampler) core.Ray {
	jitter := sampler.Get2D()

	x := ((float64(col)+jitter.X)/float64(c.width) - 0.5) * c.sensorWidth
	y := (0.5 - (float64(row)+jitter.Y)/float64(c.height)) * c.sensorHeight

	direction := c.forward.Multiply(c.focalLength).
		Add(c.right.Multiply(x)).
		Add(c.up.Multiply(y))

	return core.NewRay(c.position, direction)
}

// Position returns the eye position
func (c *Camera) Position() core.Vec3 {
	return c.position
}
