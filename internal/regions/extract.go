package regions

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultNameField is the shapefile attribute read when none is configured.
const DefaultNameField = "NAME"

// ExtractFile loads a geometry document by extension (.svg markup or .shp
// shapefile) and returns its candidates. Any failure to load degrades to an
// empty candidate set with a warning log.
func ExtractFile(path string, opt Options, nameField string) []string {
	var (
		out []string
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		if nameField == "" {
			nameField = DefaultNameField
		}
		out, err = ExtractShapefile(path, nameField)
	default:
		var b []byte
		b, err = os.ReadFile(path)
		if err == nil {
			out = ExtractSVG(string(b), opt)
		}
	}
	if err != nil {
		zap.L().Warn("regions: geometry document could not be loaded",
			zap.String("path", path),
			zap.Error(err),
		)
		return []string{}
	}
	if len(out) == 0 {
		zap.L().Warn("regions: no candidates extracted", zap.String("path", path))
		return []string{}
	}
	return out
}
