package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/scene"
)

// Server serves renders of built-in and blueprint scenes over HTTP
type Server struct {
	port        int
	scenesDir   string
	kernel      geometry.Kernel
	logger      core.Logger
	echo        *echo.Echo
	renderSlots chan struct{} // Bounds concurrent renders
}

// Config holds server settings
type Config struct {
	Port          int
	ScenesDir     string
	Kernel        geometry.Kernel // nil selects by CPU
	MaxConcurrent int             // Renders running at once, 1 when <= 0
	Logger        core.Logger
}

// HealthResponse reports server and host status
type HealthResponse struct {
	Status            string  `json:"status"`
	Kernel            string  `json:"kernel"`
	LogicalCPUs       int     `json:"logicalCpus"`
	MemoryTotalMB     uint64  `json:"memoryTotalMb"`
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
}

// NewServer creates a new web server with its routes registered
func NewServer(cfg Config) *Server {
	if cfg.Kernel == nil {
		cfg.Kernel = geometry.SelectKernel()
	}
	if cfg.Logger == nil {
		cfg.Logger = core.NopLogger
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	s := &Server{
		port:        cfg.Port,
		scenesDir:   cfg.ScenesDir,
		kernel:      cfg.Kernel,
		logger:      cfg.Logger,
		echo:        echo.New(),
		renderSlots: make(chan struct{}, cfg.MaxConcurrent),
	}

	s.echo.HideBanner = true
	s.echo.Use(corsMiddleware)

	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/api/scenes", s.handleScenes)
	s.echo.GET("/api/render", s.handleRender)
	s.echo.GET("/api/render.json", s.handleRenderJSON)
	s.echo.GET("/api/inspect", s.handleInspect)

	return s
}

// Handler exposes the routes, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the listener fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// handleHealth reports host capacity alongside the selected kernel
func (s *Server) handleHealth(c echo.Context) error {
	response := HealthResponse{Status: "ok", Kernel: s.kernel.Name()}

	if count, err := cpu.Counts(true); err == nil {
		response.LogicalCPUs = count
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		response.MemoryTotalMB = memInfo.Total / (1024 * 1024)
		response.MemoryUsedPercent = memInfo.UsedPercent
	}

	return c.JSON(http.StatusOK, response)
}

// handleScenes lists built-in and blueprint scenes, grouped
func (s *Server) handleScenes(c echo.Context) error {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse(err))
	}
	return c.JSON(http.StatusOK, response)
}

func errorResponse(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
