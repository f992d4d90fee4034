package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/integrator"
	"github.com/df07/go-soa-raytracer/pkg/renderer"
	"github.com/df07/go-soa-raytracer/pkg/scene"
)

var renderCounter atomic.Int64

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene        string `json:"scene"`        // Built-in ID, yaml:<name> or blueprint path
	Width        int    `json:"width"`        // Image width
	Height       int    `json:"height"`       // Image height
	Samples      int    `json:"samples"`      // Samples per pixel
	MaxDepth     int    `json:"maxDepth"`     // Maximum bounce depth
	RRMinBounces int    `json:"rrMinBounces"` // Russian Roulette minimum bounces, 0 disables
	Seed         int64  `json:"seed"`
	Kernel       string `json:"kernel"` // Empty uses the server's kernel
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int64   `json:"totalSamples"`
	FailedPixels     int     `json:"failedPixels"`
	Workers          int     `json:"workers"`
	ElapsedMs        int64   `json:"elapsedMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
}

// RenderResponse is the JSON form of a finished render
type RenderResponse struct {
	RenderID  string           `json:"renderId"`
	Scene     string           `json:"scene"`
	Kernel    string           `json:"kernel"`
	ImageData string           `json:"imageData"` // Base64 encoded PNG
	Stats     Stats            `json:"stats"`
	Console   []ConsoleMessage `json:"console"`
}

type renderOutput struct {
	renderID string
	kernel   geometry.Kernel
	png      []byte
	stats    renderer.RenderStats
	console  []ConsoleMessage
}

// handleRender renders a scene and returns the PNG
func (s *Server) handleRender(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}

	out, status, err := s.render(c.Request().Context(), req)
	if err != nil {
		return c.JSON(status, errorResponse(err))
	}

	header := c.Response().Header()
	header.Set("X-Render-Id", out.renderID)
	header.Set("X-Render-Kernel", out.kernel.Name())
	header.Set("X-Render-Failed-Pixels", strconv.Itoa(out.stats.FailedPixels))
	header.Set("X-Render-Elapsed-Ms", strconv.FormatInt(out.stats.Elapsed.Milliseconds(), 10))
	return c.Blob(http.StatusOK, "image/png", out.png)
}

// handleRenderJSON renders a scene and returns the image with stats and
// the render's console output
func (s *Server) handleRenderJSON(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}

	out, status, err := s.render(c.Request().Context(), req)
	if err != nil {
		return c.JSON(status, errorResponse(err))
	}

	return c.JSON(http.StatusOK, RenderResponse{
		RenderID:  out.renderID,
		Scene:     req.Scene,
		Kernel:    out.kernel.Name(),
		ImageData: base64.StdEncoding.EncodeToString(out.png),
		Stats: Stats{
			TotalPixels:      out.stats.TotalPixels,
			TotalSamples:     int64(out.stats.TotalSamples),
			FailedPixels:     out.stats.FailedPixels,
			Workers:          out.stats.Workers,
			ElapsedMs:        out.stats.Elapsed.Milliseconds(),
			SamplesPerSecond: out.stats.SamplesPerSecond(),
		},
		Console: out.console,
	})
}

// render loads the scene, renders it and encodes the PNG. The returned
// status is meaningful only with a non-nil error.
func (s *Server) render(ctx context.Context, req *RenderRequest) (*renderOutput, int, error) {
	kernel := s.kernel
	if req.Kernel != "" {
		k, err := geometry.KernelByName(req.Kernel)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		kernel = k
	}

	renderID := fmt.Sprintf("render-%d", renderCounter.Add(1))
	consoleChan := make(chan ConsoleMessage, 256)
	logger := NewWebLogger(renderID, s.logger, consoleChan)

	sceneObj, err := scene.Load(req.Scene, s.scenesDir, kernel, logger)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	sceneObj.SamplingConfig = scene.SamplingConfig{
		Width:                     req.Width,
		Height:                    req.Height,
		SamplesPerPixel:           req.Samples,
		MaxDepth:                  req.MaxDepth,
		RussianRouletteMinBounces: req.RRMinBounces,
	}

	select {
	case s.renderSlots <- struct{}{}:
		defer func() { <-s.renderSlots }()
	case <-ctx.Done():
		return nil, http.StatusServiceUnavailable, ctx.Err()
	}

	camera := geometry.NewCamera(sceneObj.CameraConfig, req.Width, req.Height)
	integ := integrator.NewPathTracingIntegrator(sceneObj.SamplingConfig)
	rt := renderer.NewRaytracer(sceneObj, camera, integ, renderer.Options{
		Seed:   req.Seed,
		Logger: logger,
	})

	img, stats, err := rt.RenderContext(ctx)
	if err != nil {
		return nil, http.StatusServiceUnavailable, fmt.Errorf("render interrupted: %w", err)
	}
	logger.Printf("Render completed in %v\n", stats.Elapsed.Round(time.Millisecond))

	data, err := encodePNG(img)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to encode image: %w", err)
	}

	return &renderOutput{
		renderID: renderID,
		kernel:   kernel,
		png:      data,
		stats:    stats,
		console:  drainConsole(consoleChan),
	}, http.StatusOK, nil
}

// parseRenderRequest parses request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{
		Scene:  values.Get("scene"),
		Kernel: values.Get("kernel"),
	}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 400, 1, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 225, 1, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 16, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", scene.DefaultMaxDepth, 0, 1000); err != nil {
		return nil, err
	}
	if req.RRMinBounces, err = parseIntParam(values, "rrMinBounces", 0, 0, 1000); err != nil {
		return nil, err
	}

	req.Seed = 1
	if value := values.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}

	return req, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pixelCenter is a sampler that always returns the middle of the domain
type pixelCenter struct{}

func (pixelCenter) Get1D() float64   { return 0.5 }
func (pixelCenter) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }
func (pixelCenter) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }
