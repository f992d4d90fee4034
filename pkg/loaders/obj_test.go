package loaders

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

func TestParseOBJ_Square(t *testing.T) {
	content := `# unit square
o square
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
f 1/1/1 2/1/1 3/1/1 4/1/1
`

	data, err := ParseOBJ(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Failed to parse OBJ: %v", err)
	}
	checkSquare(t, data)
}

func TestParseOBJ_IndexForms(t *testing.T) {
	tests := []struct {
		name     string
		face     string
		expected []int
	}{
		{"plain", "f 1 2 3", []int{0, 1, 2}},
		{"texture", "f 1/1 2/2 3/3", []int{0, 1, 2}},
		{"normal only", "f 1//1 2//1 3//1", []int{0, 1, 2}},
		{"negative", "f -3 -2 -1", []int{0, 1, 2}},
		{"mixed negative", "f 1 -2 -1", []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "v 0 0 0\nv 1 0 0\nv 0 1 0\n" + tt.face + "\n"
			data, err := ParseOBJ(strings.NewReader(content))
			if err != nil {
				t.Fatalf("Failed to parse OBJ: %v", err)
			}
			if len(data.Faces) != len(tt.expected) {
				t.Fatalf("Expected %d indices, got %d", len(tt.expected), len(data.Faces))
			}
			for i := range tt.expected {
				if data.Faces[i] != tt.expected[i] {
					t.Errorf("Index %d: expected %d, got %d", i, tt.expected[i], data.Faces[i])
				}
			}
		})
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v 1 x 2\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"negative out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -4 1 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.content)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadMesh_Formats(t *testing.T) {
	dir := t.TempDir()

	objFile := filepath.Join(dir, "tri.OBJ")
	if err := os.WriteFile(objFile, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatalf("Failed to write OBJ: %v", err)
	}

	var logged []string
	logger := core.LoggerFunc(func(format string, args ...interface{}) {
		logged = append(logged, format)
	})

	data, err := LoadMesh(objFile, logger)
	if err != nil {
		t.Fatalf("Failed to load OBJ: %v", err)
	}
	if data.TriangleCount() != 1 {
		t.Errorf("Expected 1 triangle, got %d", data.TriangleCount())
	}
	if len(logged) != 1 {
		t.Errorf("Expected one log line, got %d", len(logged))
	}

	_, err = LoadMesh(filepath.Join(dir, "mesh.stl"), nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = LoadMesh(filepath.Join(dir, "missing.obj"), nil)
	if err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestTransform_Apply(t *testing.T) {
	mesh := &MeshData{
		Vertices: []core.Vec3{core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1)},
		Faces:    []int{0, 1, 2},
	}

	tests := []struct {
		name      string
		transform Transform
		expected  []core.Vec3
	}{
		{
			name:      "identity with zero scale",
			transform: Transform{},
			expected:  mesh.Vertices,
		},
		{
			name:      "scale then translate",
			transform: Transform{Scale: 2, Translation: core.NewVec3(0, 0, -5)},
			expected:  []core.Vec3{core.NewVec3(2, 0, -5), core.NewVec3(0, 2, -5), core.NewVec3(0, 0, -3)},
		},
		{
			name:      "quarter turn about Y",
			transform: Transform{Scale: 1, RotationRad: core.NewVec3(0, math.Pi/2, 0)},
			expected:  []core.Vec3{core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0)},
		},
		{
			name:      "rotate before translate",
			transform: Transform{Scale: 1, RotationRad: core.NewVec3(0, 0, math.Pi/2), Translation: core.NewVec3(10, 0, 0)},
			expected:  []core.Vec3{core.NewVec3(10, 1, 0), core.NewVec3(9, 0, 0), core.NewVec3(10, 0, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.transform.Apply(mesh)
			for i, expected := range tt.expected {
				if out.Vertices[i].Subtract(expected).Length() > 1e-9 {
					t.Errorf("Vertex %d: expected %v, got %v", i, expected, out.Vertices[i])
				}
			}
			if len(out.Faces) != 3 {
				t.Errorf("Expected faces to be preserved, got %v", out.Faces)
			}
		})
	}

	// Source mesh is untouched
	if mesh.Vertices[0] != core.NewVec3(1, 0, 0) {
		t.Errorf("Apply modified its input: %v", mesh.Vertices[0])
	}
}
