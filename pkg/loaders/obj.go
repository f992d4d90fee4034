package loaders

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// ParseOBJ reads the geometry of a Wavefront OBJ stream. Only vertex
// positions and faces are used; polygons are triangulated as fans.
func ParseOBJ(r io.Reader) (*MeshData, error) {
	data := &MeshData{}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNumber)
			}
			var coords [3]float64
			for i := 0; i < 3; i++ {
				value, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad vertex coordinate %q: %w", lineNumber, fields[i+1], err)
				}
				coords[i] = value
			}
			data.Vertices = append(data.Vertices, core.NewVec3(coords[0], coords[1], coords[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNumber)
			}
			indices := make([]int, 0, len(fields)-1)
			for _, token := range fields[1:] {
				index, err := parseOBJIndex(token, len(data.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNumber, err)
				}
				indices = append(indices, index)
			}
			for i := 1; i+1 < len(indices); i++ {
				data.Faces = append(data.Faces, indices[0], indices[i], indices[i+1])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// parseOBJIndex resolves "v", "v/vt", "v//vn" or "v/vt/vn" to a zero based
// vertex index. Negative indices count back from the latest vertex.
func parseOBJIndex(token string, vertexCount int) (int, error) {
	if slash := strings.IndexByte(token, '/'); slash >= 0 {
		token = token[:slash]
	}

	index, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", token, err)
	}

	switch {
	case index > 0:
		index--
	case index < 0:
		index += vertexCount
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}

	if index < 0 || index >= vertexCount {
		return 0, fmt.Errorf("face index %s out of range (%d vertices)", token, vertexCount)
	}
	return index, nil
}
