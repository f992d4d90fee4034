package main

import (
	"flag"
	"os"

	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/logger"
	"github.com/df07/go-soa-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes-dir", "scenes", "Directory of blueprint scenes")
	kernelName := flag.String("kernel", "auto", "Triangle kernel: auto, scalar, lanes4 or lanes8")
	maxConcurrent := flag.Int("max-concurrent", 1, "Renders allowed to run at once")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	log := logger.New(*logLevel, os.Stdout)

	kernel, err := geometry.KernelByName(*kernelName)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	webServer := server.NewServer(server.Config{
		Port:          *port,
		ScenesDir:     *scenesDir,
		Kernel:        kernel,
		MaxConcurrent: *maxConcurrent,
		Logger:        log,
	})

	log.Infof("SoA Raytracer Web Server, kernel %s", kernel.Name())
	log.Infof("Try http://localhost:%d/api/render?scene=default", *port)

	if err := webServer.Start(); err != nil {
		log.Errorf("Error starting server: %v", err)
		os.Exit(1)
	}
}
