package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
)

const builtinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "blueprint"
	FilePath    string `json:"filePath"`    // Path to YAML file (blueprint type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type builtinScene struct {
	info  SceneInfo
	build func(geometry.Kernel) *Scene
}

var builtinScenes = []builtinScene{
	{
		info:  SceneInfo{ID: "default", Name: "Default Scene", Description: "Diffuse, metal and glass spheres on a ground quad"},
		build: NewDefaultScene,
	},
	{
		info:  SceneInfo{ID: "glass", Name: "Glass", Description: "Glass sphere and water cube refracting the scene behind"},
		build: NewGlassScene,
	},
	{
		info:  SceneInfo{ID: "meshes", Name: "Meshes", Description: "Procedural cube and octahedron triangle meshes"},
		build: NewMeshScene,
	},
	{
		info:  SceneInfo{ID: "spheregrid", Name: "Sphere Grid", Description: "10x10 grid of rainbow-colored metallic spheres"},
		build: NewSphereGridScene,
	},
}

// ListBuiltinScenes returns the scenes compiled into the binary
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		info := b.info
		info.DisplayName = info.Name
		info.Group = builtinGroup
		info.Type = "builtin"
		scenes = append(scenes, info)
	}
	return scenes
}

// ListBlueprintScenes scans dir for YAML scene blueprints. A missing
// directory yields an empty list.
func ListBlueprintScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseBlueprintMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseBlueprintMetadata extracts metadata from the leading comment block of
// a blueprint file ("# Scene:", "# Description:", "# Group:")
func ParseBlueprintMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       "yaml:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    "Blueprint Scenes",
		Type:     "blueprint",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, fmt.Errorf("failed to open blueprint: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			info.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case strings.HasPrefix(content, "Group:"):
			info.Group = strings.TrimSpace(strings.TrimPrefix(content, "Group:"))
		}
	}
	info.DisplayName = info.Name

	return info, scanner.Err()
}

// ListAllScenes returns built-in and blueprint scenes, grouped by category
// with the built-in group first
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	blueprints, err := ListBlueprintScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list blueprint scenes: %w", err)
	}
	allScenes := append(ListBuiltinScenes(), blueprints...)

	groupMap := make(map[string][]SceneInfo)
	for _, info := range allScenes {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if group, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: group})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response, nil
}

// Load resolves a scene by name: a built-in ID, a "yaml:<name>" ID found in
// dir, or a path to a blueprint file
func Load(name, dir string, kernel geometry.Kernel, logger core.Logger) (*Scene, error) {
	for _, b := range builtinScenes {
		if strings.EqualFold(b.info.ID, name) {
			return b.build(kernel), nil
		}
	}

	path := name
	if strings.HasPrefix(name, "yaml:") {
		path = filepath.Join(dir, strings.TrimPrefix(name, "yaml:")+".yaml")
		if _, err := os.Stat(path); err != nil {
			path = strings.TrimSuffix(path, ".yaml") + ".yml"
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unknown scene %q", name)
	}
	return LoadFile(path, kernel, logger)
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
