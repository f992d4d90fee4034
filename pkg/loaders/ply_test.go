package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// createTestPLY builds a binary PLY square made of two triangles
func createTestPLY(t *testing.T, order binary.ByteOrder, format string, includeNormals bool, includeColors bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment generated for tests\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")

	if includeNormals {
		buf.WriteString("property float nx\n")
		buf.WriteString("property float ny\n")
		buf.WriteString("property float nz\n")
	}

	if includeColors {
		buf.WriteString("property uchar red\n")
		buf.WriteString("property uchar green\n")
		buf.WriteString("property uchar blue\n")
	}

	buf.WriteString("element face 2\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	vertices := [][3]float32{
		{0.0, 0.0, 0.0},
		{1.0, 0.0, 0.0},
		{1.0, 1.0, 0.0},
		{0.0, 1.0, 0.0},
	}

	for _, v := range vertices {
		binary.Write(&buf, order, v)
		if includeNormals {
			binary.Write(&buf, order, [3]float32{0, 0, 1})
		}
		if includeColors {
			binary.Write(&buf, order, [3]uint8{255, 128, 0})
		}
	}

	faces := []struct {
		count      uint8
		v1, v2, v3 int32
	}{
		{3, 0, 1, 2},
		{3, 0, 2, 3},
	}

	for _, f := range faces {
		binary.Write(&buf, order, f.count)
		binary.Write(&buf, order, f.v1)
		binary.Write(&buf, order, f.v2)
		binary.Write(&buf, order, f.v3)
	}

	return buf.Bytes()
}

func checkSquare(t *testing.T, data *MeshData) {
	t.Helper()

	expectedVertices := []core.Vec3{
		core.NewVec3(0.0, 0.0, 0.0),
		core.NewVec3(1.0, 0.0, 0.0),
		core.NewVec3(1.0, 1.0, 0.0),
		core.NewVec3(0.0, 1.0, 0.0),
	}

	if len(data.Vertices) != len(expectedVertices) {
		t.Fatalf("Expected %d vertices, got %d", len(expectedVertices), len(data.Vertices))
	}

	for i, expected := range expectedVertices {
		if data.Vertices[i].Subtract(expected).Length() > 1e-6 {
			t.Errorf("Vertex %d: expected %v, got %v", i, expected, data.Vertices[i])
		}
	}

	expectedFaces := []int{0, 1, 2, 0, 2, 3}
	if len(data.Faces) != len(expectedFaces) {
		t.Fatalf("Expected %d face indices, got %d", len(expectedFaces), len(data.Faces))
	}

	for i, expected := range expectedFaces {
		if data.Faces[i] != expected {
			t.Errorf("Face index %d: expected %d, got %d", i, expected, data.Faces[i])
		}
	}
}

func TestParsePLY_Binary(t *testing.T) {
	tests := []struct {
		name           string
		order          binary.ByteOrder
		format         string
		includeNormals bool
		includeColors  bool
	}{
		{"little endian", binary.LittleEndian, "binary_little_endian", false, false},
		{"big endian", binary.BigEndian, "binary_big_endian", false, false},
		{"with normals", binary.LittleEndian, "binary_little_endian", true, false},
		{"with normals and colors", binary.LittleEndian, "binary_little_endian", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := createTestPLY(t, tt.order, tt.format, tt.includeNormals, tt.includeColors)
			data, err := ParsePLY(bytes.NewReader(raw))
			if err != nil {
				t.Fatalf("Failed to parse PLY: %v", err)
			}
			checkSquare(t, data)
		})
	}
}

func TestParsePLY_ASCII(t *testing.T) {
	content := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`

	data, err := ParsePLY(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Failed to parse PLY: %v", err)
	}
	checkSquare(t, data)
}

func TestParsePLY_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no magic", "not a ply\n"},
		{"truncated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n"},
		{"index out of range", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
			"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 7\n"},
		{"truncated body", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePLY(strings.NewReader(tt.content)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestParsePLYHeader(t *testing.T) {
	headerContent := `ply
format binary_little_endian 1.0
comment Test PLY file
element vertex 100
property float x
property float y
property float z
property float nx
property float ny
property float nz
property uchar red
property uchar green
property uchar blue
element face 50
property list uchar int vertex_indices
end_header
`

	header, err := parsePLYHeader(bufio.NewReader(strings.NewReader(headerContent)))
	if err != nil {
		t.Fatalf("Failed to parse header: %v", err)
	}

	if header.Format != "binary_little_endian" {
		t.Errorf("Expected format 'binary_little_endian', got '%s'", header.Format)
	}

	if header.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", header.Version)
	}

	if header.VertexCount != 100 {
		t.Errorf("Expected 100 vertices, got %d", header.VertexCount)
	}

	if header.FaceCount != 50 {
		t.Errorf("Expected 50 faces, got %d", header.FaceCount)
	}

	if len(header.VertexProps) != 9 {
		t.Errorf("Expected 9 vertex properties, got %d", len(header.VertexProps))
	}

	if len(header.FaceProps) != 1 || !header.FaceProps[0].IsList {
		t.Errorf("Expected 1 list face property, got %v", header.FaceProps)
	}
}

func TestPLYTypeSize(t *testing.T) {
	tests := []struct {
		dataType string
		expected int
	}{
		{"float", 4},
		{"float32", 4},
		{"int", 4},
		{"uint32", 4},
		{"double", 8},
		{"float64", 8},
		{"short", 2},
		{"ushort", 2},
		{"char", 1},
		{"uchar", 1},
		{"unknown", 0},
	}

	for _, test := range tests {
		result := plyTypeSize(test.dataType)
		if result != test.expected {
			t.Errorf("plyTypeSize(%s): expected %d, got %d", test.dataType, test.expected, result)
		}
	}
}

func TestLoadMesh_PLYFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "square.ply")
	raw := createTestPLY(t, binary.LittleEndian, "binary_little_endian", false, false)
	if err := os.WriteFile(testFile, raw, 0644); err != nil {
		t.Fatalf("Failed to create test PLY file: %v", err)
	}

	data, err := LoadMesh(testFile, nil)
	if err != nil {
		t.Fatalf("Failed to load PLY: %v", err)
	}
	checkSquare(t, data)
}
