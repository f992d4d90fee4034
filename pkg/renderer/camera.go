package renderer

import "github.com/df07/go-soa-raytracer/pkg/core"

// Camera generates primary rays. Row 0 is the top of the image and column 0
// the left edge; sub-pixel jitter comes from the sampler.
type Camera interface {
	GetRayThroughPixel(row, col int, sampler core.Sampler) core.Ray
}
