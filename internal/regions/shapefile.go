package regions

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Feature is one named shapefile record with its planar bounds.
type Feature struct {
	Name   string
	Bounds *geom.Bounds
}

// ReadShapefile returns the named features of a shapefile. Records whose
// geometry is missing or has no usable parts are skipped.
func ReadShapefile(path, nameField string) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "regions: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	idx := -1
	var available []string
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		available = append(available, name)
		if strings.EqualFold(name, nameField) {
			idx = i
		}
	}
	if idx < 0 {
		return nil, eris.Errorf("regions: field %q not found (available: %s)", nameField, strings.Join(available, ", "))
	}

	var out []Feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		g := toGeom(shape)
		if g == nil {
			skipped++
			continue
		}
		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
		if name == "" {
			skipped++
			continue
		}
		out = append(out, Feature{Name: name, Bounds: g.Bounds()})
	}
	if skipped > 0 {
		zap.L().Debug("regions: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

// ExtractShapefile returns the sorted, deduplicated names of a shapefile.
func ExtractShapefile(path, nameField string) ([]string, error) {
	features, err := ReadShapefile(path, nameField)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(features))
	for _, f := range features {
		set[f.Name] = struct{}{}
	}
	return sortedKeys(set), nil
}

// toGeom converts polygon-like shapes; other shape types yield nil.
func toGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Polygon:
		return partsToMultiPolygon(s.NumParts, s.Parts, s.Points)
	case *shp.PolygonZ:
		return partsToMultiPolygon(s.NumParts, s.Parts, s.Points)
	case *shp.PolygonM:
		return partsToMultiPolygon(s.NumParts, s.Parts, s.Points)
	default:
		return nil
	}
}

func partsToMultiPolygon(numParts int32, parts []int32, points []shp.Point) geom.T {
	if numParts == 0 || len(points) == 0 {
		return nil
	}
	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < numParts && int(i) < len(parts); i++ {
		start := parts[i]
		end := int32(len(points))
		if i+1 < numParts && int(i+1) < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, points[j].X, points[j].Y)
		}
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
