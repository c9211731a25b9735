package geomops

import (
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Simplify returns a copy of fc with geometries simplified to the given
// tolerance (degrees) and, when keep is non-empty, properties reduced
// to the keep list. Features that simplify to nothing are dropped.
func Simplify(fc *geojson.FeatureCollection, tolerance float64, keep []string) (*geojson.FeatureCollection, error) {
	keepSet := map[string]bool{}
	for _, k := range keep {
		keepSet[k] = true
	}

	out := &geojson.FeatureCollection{}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		g, err := toSF(f.Geometry)
		if err != nil {
			return nil, err
		}
		simplified, err := g.Simplify(tolerance)
		if err != nil {
			zap.L().Warn("simplify failed, keeping original geometry", zap.Error(err))
			simplified = g
		}
		if simplified.IsEmpty() {
			continue
		}

		gg, err := fromSF(simplified)
		if err != nil {
			return nil, err
		}

		props := f.Properties
		if len(keepSet) > 0 {
			props = map[string]interface{}{}
			for k, v := range f.Properties {
				if keepSet[k] {
					props[k] = v
				}
			}
		}

		out.Features = append(out.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   gg,
			Properties: props,
		})
	}

	return out, nil
}
