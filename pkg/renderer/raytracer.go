package renderer

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/integrator"
	"github.com/df07/go-soa-raytracer/pkg/scene"
)

// Options controls a single render
type Options struct {
	Width           int   // Image width
	Height          int   // Image height
	SamplesPerPixel int   // Number of rays per pixel
	NumWorkers      int   // Parallel workers, runtime.NumCPU() when <= 0
	Seed            int64 // Base seed; each column derives its own
	Logger          core.Logger
}

// Raytracer renders a scene into an 8-bit gamma encoded image. Columns are
// rendered in parallel against the read-only scene.
type Raytracer struct {
	scene      *scene.Scene
	camera     Camera
	integrator integrator.Integrator
	options    Options
	logger     core.Logger

	completed atomic.Int64 // Columns finished, for progress reporting
}

// NewRaytracer creates a new raytracer. Zero width, height or sample count
// fall back to the scene's sampling configuration.
func NewRaytracer(s *scene.Scene, camera Camera, integ integrator.Integrator, options Options) *Raytracer {
	if options.Width <= 0 {
		options.Width = s.SamplingConfig.Width
	}
	if options.Height <= 0 {
		options.Height = s.SamplingConfig.Height
	}
	if options.SamplesPerPixel <= 0 {
		options.SamplesPerPixel = max(1, s.SamplingConfig.SamplesPerPixel)
	}

	logger := options.Logger
	if logger == nil {
		logger = core.NopLogger
	}

	return &Raytracer{
		scene:      s,
		camera:     camera,
		integrator: integ,
		options:    options,
		logger:     logger,
	}
}

// Render renders the whole image
func (rt *Raytracer) Render() (*image.RGBA, RenderStats) {
	img, stats, _ := rt.RenderContext(context.Background())
	return img, stats
}

// RenderContext renders the image, stopping early when ctx is cancelled.
// Columns not rendered stay black and ctx.Err() is returned.
func (rt *Raytracer) RenderContext(ctx context.Context) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	width, height := rt.options.Width, rt.options.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	rt.completed.Store(0)
	pool := NewWorkerPool(rt.options.NumWorkers, width, func(task ColumnTask) ColumnResult {
		return rt.renderColumn(ctx, task, img)
	})

	stats := RenderStats{
		Width:           width,
		Height:          height,
		SamplesPerPixel: rt.options.SamplesPerPixel,
		Workers:         pool.GetNumWorkers(),
	}

	rt.logger.Printf("Rendering %dx%d at %d samples/pixel with %d workers\n",
		width, height, rt.options.SamplesPerPixel, pool.GetNumWorkers())

	pool.Start()
	go func() {
		for col := 0; col < width; col++ {
			pool.SubmitTask(ColumnTask{
				Column:  col,
				Sampler: core.NewSeededSampler(ColumnSeed(rt.options.Seed, col)),
			})
		}
	}()

	for i := 0; i < width; i++ {
		result, _ := pool.GetResult()
		stats.add(result.Stats)
	}
	pool.Stop()

	stats.Elapsed = time.Since(startTime)
	if stats.FailedPixels > 0 {
		rt.logger.Printf("Warning: %d pixels failed and were rendered black\n", stats.FailedPixels)
	}

	if stats.SkippedColumns > 0 {
		return img, stats, ctx.Err()
	}
	return img, stats, nil
}

// renderColumn renders every pixel of one column, top to bottom
func (rt *Raytracer) renderColumn(ctx context.Context, task ColumnTask, img *image.RGBA) ColumnResult {
	result := ColumnResult{Column: task.Column}
	if ctx.Err() != nil {
		result.Stats.Skipped = true
		return result
	}

	for row := 0; row < rt.options.Height; row++ {
		pixel, ok := rt.renderPixel(row, task.Column, task.Sampler)
		if !ok {
			result.Stats.FailedPixels++
			pixel = core.Vec3{}
		}
		img.SetRGBA(task.Column, row, Vec3ToColor(pixel))
		result.Stats.Pixels++
		result.Stats.Samples += rt.options.SamplesPerPixel
	}

	rt.reportProgress()
	return result
}

// renderPixel averages the samples of one pixel in linear space. A panic or
// a non-finite estimate marks the pixel as failed.
func (rt *Raytracer) renderPixel(row, col int, sampler core.Sampler) (pixel core.Vec3, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Printf("Pixel (%d, %d) failed: %v\n", col, row, r)
			pixel, ok = core.Vec3{}, false
		}
	}()

	colorAccum := core.Vec3{}
	for sample := 0; sample < rt.options.SamplesPerPixel; sample++ {
		ray := rt.camera.GetRayThroughPixel(row, col, sampler)
		colorAccum = colorAccum.Add(rt.integrator.RayColor(ray, rt.scene, sampler))
	}

	pixel = colorAccum.Multiply(1.0 / float64(rt.options.SamplesPerPixel))
	if !pixel.IsFinite() {
		return core.Vec3{}, false
	}
	return pixel, true
}

// reportProgress logs once each time another tenth of the columns is done
func (rt *Raytracer) reportProgress() {
	width := int64(rt.options.Width)
	done := rt.completed.Add(1)
	if done*10/width != (done-1)*10/width {
		rt.logger.Printf("Progress: %d%% (%d/%d columns)\n", done*100/width, done, width)
	}
}

// ColumnSeed derives the sampler seed of a column from the render seed, so
// output does not depend on which worker renders which column
func ColumnSeed(seed int64, col int) int64 {
	return int64(uint64(seed)*0x9E3779B97F4A7C15 + uint64(col)*0xBF58476D1CE4E5B9)
}

// Vec3ToColor converts a linear color to RGBA with gamma 2 encoding and
// clamping
func Vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0, 1).Sqrt()

	return color.RGBA{
		R: quantize(colorVec.X),
		G: quantize(colorVec.Y),
		B: quantize(colorVec.Z),
		A: 255,
	}
}

// quantize maps [0, 1) onto 256 equal bins
func quantize(v float64) uint8 {
	return uint8(256 * max(0, min(0.999, v)))
}
