package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/df07/go-soa-raytracer/pkg/config"
	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/integrator"
	"github.com/df07/go-soa-raytracer/pkg/logger"
	"github.com/df07/go-soa-raytracer/pkg/renderer"
	"github.com/df07/go-soa-raytracer/pkg/scene"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// run parses args, renders the selected scene and writes a PNG
func run(args []string, stdout io.Writer) error {
	cfg, list, err := parseConfig(args, stdout)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, stdout)

	if list {
		return listScenes(cfg.Render.ScenesDir, stdout)
	}

	if cfg.Output.CPUProfile != "" {
		f, err := os.Create(cfg.Output.CPUProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Infof("Starting SoA raytracer on %s", systemInfo())

	rt, s, err := buildRaytracer(cfg, log)
	if err != nil {
		return err
	}
	log.Infof("Scene %q: %d primitives, kernel %s", s.Name, s.GetPrimitiveCount(), kernelName(s))

	img, stats := rt.Render()
	log.Infof("Render completed: %s, average luminance %.3f", stats, renderer.CalculateAverageLuminance(img))

	if err := savePNG(img, cfg.Output.Path); err != nil {
		return err
	}
	log.Infof("Render saved as %s", cfg.Output.Path)
	return nil
}

// parseConfig loads the optional config file and applies explicitly set
// flags on top of it
func parseConfig(args []string, stdout io.Writer) (*config.Config, bool, error) {
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stdout)

	defaults := config.Default()
	configPath := fs.String("config", "", "YAML config file")
	sceneName := fs.String("scene", defaults.Render.Scene, "Built-in scene, yaml:<name> or path to a blueprint")
	scenesDir := fs.String("scenes-dir", defaults.Render.ScenesDir, "Directory of blueprint scenes")
	outPath := fs.String("out", defaults.Output.Path, "Output PNG path")
	width := fs.Int("width", defaults.Render.Width, "Image width")
	height := fs.Int("height", defaults.Render.Height, "Image height")
	samples := fs.Int("samples", defaults.Render.SamplesPerPixel, "Samples per pixel")
	depth := fs.Int("depth", defaults.Render.MaxDepth, "Maximum bounce depth")
	workers := fs.Int("workers", defaults.Render.Workers, "Number of workers (0 = all CPUs)")
	seed := fs.Int64("seed", defaults.Render.Seed, "Random seed")
	kernel := fs.String("kernel", defaults.Render.Kernel, "Triangle kernel: auto, scalar, lanes4 or lanes8")
	cpuProfile := fs.String("cpuprofile", "", "Write cpu profile to file")
	logLevel := fs.String("log-level", defaults.Logging.Level, "Log level: debug, info, warn or error")
	list := fs.Bool("list", false, "List available scenes and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, false, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Render.Scene = *sceneName
		case "scenes-dir":
			cfg.Render.ScenesDir = *scenesDir
		case "out":
			cfg.Output.Path = *outPath
		case "width":
			cfg.Render.Width = *width
		case "height":
			cfg.Render.Height = *height
		case "samples":
			cfg.Render.SamplesPerPixel = *samples
		case "depth":
			cfg.Render.MaxDepth = *depth
		case "workers":
			cfg.Render.Workers = *workers
		case "seed":
			cfg.Render.Seed = *seed
		case "kernel":
			cfg.Render.Kernel = *kernel
		case "cpuprofile":
			cfg.Output.CPUProfile = *cpuProfile
		case "log-level":
			cfg.Logging.Level = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, *list, nil
}

// buildRaytracer loads the scene and wires camera, integrator and renderer
func buildRaytracer(cfg *config.Config, log core.Logger) (*renderer.Raytracer, *scene.Scene, error) {
	kernel, err := geometry.KernelByName(cfg.Render.Kernel)
	if err != nil {
		return nil, nil, err
	}

	s, err := scene.Load(cfg.Render.Scene, cfg.Render.ScenesDir, kernel, log)
	if err != nil {
		return nil, nil, err
	}

	r := cfg.Render
	if r.Background != nil {
		bg := *r.Background
		s.Background = core.NewVec3(bg[0], bg[1], bg[2])
	}
	s.SamplingConfig = scene.SamplingConfig{
		Width:                     r.Width,
		Height:                    r.Height,
		SamplesPerPixel:           r.SamplesPerPixel,
		MaxDepth:                  r.MaxDepth,
		RussianRouletteMinBounces: r.RussianRouletteMinBounces,
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	camera := geometry.NewCamera(s.CameraConfig, r.Width, r.Height)
	integ := integrator.NewPathTracingIntegrator(s.SamplingConfig)
	rt := renderer.NewRaytracer(s, camera, integ, renderer.Options{
		NumWorkers: r.Workers,
		Seed:       r.Seed,
		Logger:     log,
	})
	return rt, s, nil
}

func kernelName(s *scene.Scene) string {
	if len(s.Meshes) == 0 {
		return "unused"
	}
	return s.Meshes[0].Kernel().Name()
}

func listScenes(dir string, w io.Writer) error {
	response, err := scene.ListAllScenes(dir)
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Fprintf(w, "  %-20s %s\n", info.ID, info.Description)
		}
	}
	return nil
}

func savePNG(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return nil
}

// systemInfo describes the host for the startup banner
func systemInfo() string {
	cpuName := "unknown CPU"
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		cpuName = info[0].ModelName
	}

	ramGB := uint64(0)
	if memInfo, err := mem.VirtualMemory(); err == nil {
		ramGB = memInfo.Total / (1024 * 1024 * 1024)
	}

	return fmt.Sprintf("%s, %d logical cores, %d GB RAM, %s kernel",
		cpuName, runtime.NumCPU(), ramGB, geometry.SelectKernel().Name())
}
