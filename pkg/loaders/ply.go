package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// ParsePLY reads vertex positions and faces from a PLY stream. Any other
// vertex or face properties are read and discarded.
func ParsePLY(r io.Reader) (*MeshData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		values = &asciiValueReader{reader: reader}
	case "binary_little_endian":
		values = &binaryValueReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValueReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	data, err := readPLYBody(values, header)
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}
	return data, nil
}

func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic")
	}

	var currentElement string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("unexpected end of header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %s", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]

		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %s", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("unsupported element %q", currentElement)
				}
			}

		case "property":
			prop, err := parsePLYProperty(parts)
			if err != nil {
				return nil, err
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	if header.Format == "" {
		return nil, fmt.Errorf("no format specified")
	}
	return header, nil
}

func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 5 && parts[1] == "list" {
		return PLYProperty{Name: parts[4], Type: "list", IsList: true, ListType: parts[2], DataType: parts[3]}, nil
	}
	if len(parts) >= 3 {
		return PLYProperty{Name: parts[2], Type: parts[1]}, nil
	}
	return PLYProperty{}, fmt.Errorf("invalid property line: %s", strings.Join(parts, " "))
}

func readPLYBody(values plyValueReader, header *PLYHeader) (*MeshData, error) {
	data := &MeshData{
		Vertices: make([]core.Vec3, header.VertexCount),
		Faces:    make([]int, 0, header.FaceCount*3),
	}

	for i := 0; i < header.VertexCount; i++ {
		var position [3]float64
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipPLYList(values, prop); err != nil {
					return nil, err
				}
				continue
			}
			value, err := values.read(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			switch prop.Name {
			case "x":
				position[0] = value
			case "y":
				position[1] = value
			case "z":
				position[2] = value
			}
		}
		data.Vertices[i] = core.NewVec3(position[0], position[1], position[2])
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := values.read(prop.Type); err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				if err := skipPLYList(values, prop); err != nil {
					return nil, err
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			indices := make([]int, int(count))
			for k := range indices {
				value, err := values.read(prop.DataType)
				if err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
				index := int(value)
				if index < 0 || index >= header.VertexCount {
					return nil, fmt.Errorf("face %d: vertex index %d out of range", i, index)
				}
				indices[k] = index
			}
			for k := 1; k+1 < len(indices); k++ {
				data.Faces = append(data.Faces, indices[0], indices[k], indices[k+1])
			}
		}
	}

	return data, nil
}

func skipPLYList(values plyValueReader, prop PLYProperty) error {
	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(count); k++ {
		if _, err := values.read(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// plyValueReader yields one scalar of the given PLY type at a time
type plyValueReader interface {
	read(plyType string) (float64, error)
}

type asciiValueReader struct {
	reader *bufio.Reader
	tokens []string
}

func (a *asciiValueReader) read(plyType string) (float64, error) {
	for len(a.tokens) == 0 {
		line, err := a.reader.ReadString('\n')
		if line == "" && err != nil {
			return 0, fmt.Errorf("unexpected end of data: %w", err)
		}
		a.tokens = strings.Fields(line)
	}
	token := a.tokens[0]
	a.tokens = a.tokens[1:]

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", plyType, token)
	}
	return value, nil
}

type binaryValueReader struct {
	reader io.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryValueReader) read(plyType string) (float64, error) {
	size := plyTypeSize(plyType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported property type: %s", plyType)
	}
	if _, err := io.ReadFull(b.reader, b.buf[:size]); err != nil {
		return 0, err
	}

	raw := b.buf[:size]
	switch plyType {
	case "char", "int8":
		return float64(int8(raw[0])), nil
	case "uchar", "uint8":
		return float64(raw[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(raw))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(raw)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(raw))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(raw)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(raw))), nil
	default:
		return math.Float64frombits(b.order.Uint64(raw)), nil
	}
}

func plyTypeSize(plyType string) int {
	switch plyType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "float", "int32", "uint32", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}
