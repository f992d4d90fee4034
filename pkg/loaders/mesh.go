package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// ErrUnsupportedFormat is returned for mesh files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// MeshData is an indexed triangle soup
type MeshData struct {
	Vertices []core.Vec3 // Vertex positions
	Faces    []int       // Triangle indices (3 per triangle)
}

// TriangleCount returns the number of triangles
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// Bounds returns the bounding box of all vertices
func (m *MeshData) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.Vertices...)
}

// LoadMesh loads an OBJ or PLY file, chosen by extension
func LoadMesh(filename string, logger core.Logger) (*MeshData, error) {
	startTime := time.Now()

	var load func(*os.File) (*MeshData, error)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		load = func(f *os.File) (*MeshData, error) { return ParseOBJ(f) }
	case ".ply":
		load = func(f *os.File) (*MeshData, error) { return ParsePLY(f) }
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh file: %w", err)
	}
	defer file.Close()

	data, err := load(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	if logger != nil {
		logger.Printf("Loaded mesh %s: %d vertices, %d triangles in %v\n",
			filepath.Base(filename), len(data.Vertices), data.TriangleCount(), time.Since(startTime))
	}

	return data, nil
}
