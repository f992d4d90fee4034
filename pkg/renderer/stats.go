package renderer

import (
	"fmt"
	"image"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width           int           // Image width in pixels
	Height          int           // Image height in pixels
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	SamplesPerPixel int           // Samples requested per pixel
	FailedPixels    int           // Pixels whose estimate panicked or was not finite
	SkippedColumns  int           // Columns not rendered because the render was cancelled
	Workers         int           // Number of parallel workers
	Elapsed         time.Duration // Wall clock time of the render
}

// ColumnStats is what a single column task reports back
type ColumnStats struct {
	Pixels       int
	Samples      int
	FailedPixels int
	Skipped      bool
}

func (s *RenderStats) add(c ColumnStats) {
	if c.Skipped {
		s.SkippedColumns++
		return
	}
	s.TotalPixels += c.Pixels
	s.TotalSamples += c.Samples
	s.FailedPixels += c.FailedPixels
}

// SamplesPerSecond returns the sampling throughput of the render
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Elapsed.Seconds()
}

func (s RenderStats) String() string {
	return fmt.Sprintf("%dx%d, %d samples/pixel, %d samples in %v (%.0f samples/s), %d failed pixels, %d workers",
		s.Width, s.Height, s.SamplesPerPixel, s.TotalSamples, s.Elapsed.Round(time.Millisecond),
		s.SamplesPerSecond(), s.FailedPixels, s.Workers)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image,
// with channels scaled to [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += 0.2126*float64(c.R)/255 + 0.7152*float64(c.G)/255 + 0.0722*float64(c.B)/255
		}
	}
	return total / float64(pixels)
}
