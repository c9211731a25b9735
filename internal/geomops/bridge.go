// Package geomops implements the spatial operations behind the map
// build: bounds, boundary clipping, and geometry simplification.
package geomops

import (
	"encoding/binary"

	sf "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// toSF converts a go-geom geometry into the overlay engine's model.
// WKB is the shared wire format between the two.
func toSF(g geom.T) (sf.Geometry, error) {
	data, err := wkb.Marshal(g, binary.LittleEndian)
	if err != nil {
		return sf.Geometry{}, eris.Wrap(err, "geomops: marshal wkb")
	}
	out, err := sf.UnmarshalWKB(data)
	if err != nil {
		return sf.Geometry{}, eris.Wrap(err, "geomops: unmarshal wkb")
	}
	return out, nil
}

// fromSF converts back into the go-geom model used by the layer IO.
func fromSF(g sf.Geometry) (geom.T, error) {
	out, err := wkb.Unmarshal(g.AsBinary())
	if err != nil {
		return nil, eris.Wrap(err, "geomops: unmarshal wkb")
	}
	return out, nil
}
