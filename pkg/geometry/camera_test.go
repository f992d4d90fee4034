package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// centerSampler always lands in the middle of a pixel
type centerSampler struct{}

func (centerSampler) Get1D() float64   { return 0.5 }
func (centerSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }
func (centerSampler) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }

func TestCamera_GetRayThroughPixel(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Position:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		FocalLengthMM: 35,
	}, 101, 101)

	// Center pixel of an odd sized image looks straight ahead
	ray := camera.GetRayThroughPixel(50, 50, centerSampler{})
	if ray.Direction.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-9 {
		t.Errorf("Expected forward ray, got %v", ray.Direction)
	}
	if math.Abs(ray.Direction.Length()-1) > 1e-12 {
		t.Errorf("Expected unit direction, got length %f", ray.Direction.Length())
	}

	// Row 0 is the top of the image, column 0 the left
	topLeft := camera.GetRayThroughPixel(0, 0, centerSampler{})
	if topLeft.Direction.Y <= 0 || topLeft.Direction.X >= 0 {
		t.Errorf("Expected top-left ray to point up and left, got %v", topLeft.Direction)
	}

	// 35mm sensor at 35mm focal length spans about 53 degrees horizontally
	edge := camera.GetRayThroughPixel(50, 100, core.NewSeededSampler(1))
	angle := math.Atan2(edge.Direction.X, -edge.Direction.Z)
	if angle < 0.4 || angle > 0.47 {
		t.Errorf("Expected edge angle near 0.46 rad, got %f", angle)
	}
}

func TestCamera_UpParallelToView(t *testing.T) {
	camera := NewCamera(CameraConfig{
		Position:      core.NewVec3(0, 5, 0),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		FocalLengthMM: 50,
	}, 10, 10)

	ray := camera.GetRayThroughPixel(5, 5, centerSampler{})
	if !ray.Direction.IsFinite() || ray.Direction.Y >= 0 {
		t.Errorf("Expected finite downward ray, got %v", ray.Direction)
	}
}
