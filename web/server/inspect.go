package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-soa-raytracer/pkg/core"
	"github.com/df07/go-soa-raytracer/pkg/geometry"
	"github.com/df07/go-soa-raytracer/pkg/integrator"
	"github.com/df07/go-soa-raytracer/pkg/material"
	"github.com/df07/go-soa-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// handleInspect reports what the centre ray of a pixel hits first
func (s *Server) handleInspect(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}

	x, err := parseIntParam(c.QueryParams(), "x", req.Width/2, 0, req.Width-1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}
	y, err := parseIntParam(c.QueryParams(), "y", req.Height/2, 0, req.Height-1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}

	sceneObj, err := scene.Load(req.Scene, s.scenesDir, s.kernel, s.logger)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}

	return c.JSON(http.StatusOK, inspectPixel(sceneObj, req.Width, req.Height, x, y))
}

// inspectPixel casts the centre ray of pixel (x, y) and describes the first
// surface it hits
func inspectPixel(sceneObj *scene.Scene, width, height, x, y int) InspectResponse {
	camera := geometry.NewCamera(sceneObj.CameraConfig, width, height)
	ray := camera.GetRayThroughPixel(y, x, pixelCenter{})

	hit, isHit := sceneObj.Hit(ray, integrator.MinHitDistance, integrator.MaxHitDistance)
	if !isHit {
		return InspectResponse{Hit: false}
	}

	response := InspectResponse{
		Hit:       true,
		Point:     vecArray(hit.Point),
		Normal:    vecArray(hit.Normal),
		Distance:  hit.Distance,
		FrontFace: hit.FrontFace,
	}

	materialType, materialProps := extractMaterialInfo(sceneObj.Material(hit.MaterialID))
	geometryType, geometryProps := extractGeometryInfo(findPrimitive(sceneObj, ray, hit))
	response.MaterialType = materialType
	response.GeometryType = geometryType
	response.Properties = map[string]interface{}{
		"material": materialProps,
		"geometry": geometryProps,
	}
	return response
}

// findPrimitive returns the shape or mesh that produced hit
func findPrimitive(sceneObj *scene.Scene, ray core.Ray, hit material.HitRecord) interface{} {
	for _, shape := range sceneObj.Shapes {
		if h, ok := shape.Hit(ray, integrator.MinHitDistance, integrator.MaxHitDistance); ok && h.Distance == hit.Distance {
			return shape
		}
	}
	for _, mesh := range sceneObj.Meshes {
		if h, ok := mesh.Hit(ray, integrator.MinHitDistance, integrator.MaxHitDistance); ok && h.Distance == hit.Distance {
			return mesh
		}
	}
	return nil
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(primitive interface{}) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := primitive.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vecArray(geom.V0), vecArray(geom.V1), vecArray(geom.V2)}
		properties["normal"] = vecArray(geom.GetNormal())
		return "triangle", properties

	case *geometry.TriangleMesh:
		box := geom.BoundingBox()
		properties["triangleCount"] = geom.GetTriangleCount()
		properties["kernel"] = geom.Kernel().Name()
		properties["boundsMin"] = vecArray(box.Min)
		properties["boundsMax"] = vecArray(box.Max)
		return "mesh", properties

	default:
		return "unknown", properties
	}
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}
