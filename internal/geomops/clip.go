package geomops

import (
	"github.com/dhconnelly/rtreego"
	sf "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// boundaryPart is one boundary feature in the candidate index.
type boundaryPart struct {
	rect *rtreego.Rect
}

func (p *boundaryPart) Bounds() *rtreego.Rect { return p.rect }

// Clipper clips feature collections to a territory boundary. The
// boundary parts are indexed in an R-tree so most features outside the
// territory are dropped on bounding boxes alone, before the exact
// intersection runs.
type Clipper struct {
	union sf.Geometry
	index *rtreego.Rtree
}

// NewClipper builds a clipper from the boundary collection. The clip
// target is the union of all boundary feature geometries.
func NewClipper(boundary *geojson.FeatureCollection) (*Clipper, error) {
	c := &Clipper{index: rtreego.NewTree(2, 25, 50)}

	var parts int
	for _, f := range boundary.Features {
		if f.Geometry == nil {
			continue
		}
		g, err := toSF(f.Geometry)
		if err != nil {
			return nil, err
		}
		if g.IsEmpty() {
			continue
		}

		if parts == 0 {
			c.union = g
		} else {
			u, err := sf.Union(c.union, g)
			if err != nil {
				return nil, eris.Wrap(err, "geomops: union boundary")
			}
			c.union = u
		}

		rect, err := boundsRect(f.Geometry.Bounds())
		if err != nil {
			return nil, err
		}
		c.index.Insert(&boundaryPart{rect: rect})
		parts++
	}

	if parts == 0 {
		return nil, eris.New("geomops: boundary has no usable geometry")
	}
	return c, nil
}

// Clip intersects every feature in fc with the boundary. Features whose
// intersection is empty are dropped; properties pass through untouched.
func (c *Clipper) Clip(fc *geojson.FeatureCollection) (*geojson.FeatureCollection, error) {
	out := &geojson.FeatureCollection{}

	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}

		rect, err := boundsRect(f.Geometry.Bounds())
		if err != nil {
			return nil, err
		}
		if len(c.index.SearchIntersect(rect)) == 0 {
			continue
		}

		g, err := toSF(f.Geometry)
		if err != nil {
			return nil, err
		}
		if !sf.Intersects(c.union, g) {
			continue
		}

		clipped, err := sf.Intersection(c.union, g)
		if err != nil {
			zap.L().Warn("intersection failed, dropping feature", zap.Error(err))
			continue
		}
		if clipped.IsEmpty() {
			continue
		}

		gg, err := fromSF(clipped)
		if err != nil {
			return nil, err
		}
		out.Features = append(out.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   gg,
			Properties: f.Properties,
		})
	}

	return out, nil
}

// Intersects reports whether g touches the boundary at all.
func (c *Clipper) Intersects(g geom.T) (bool, error) {
	s, err := toSF(g)
	if err != nil {
		return false, err
	}
	return sf.Intersects(c.union, s), nil
}

// rtreego rejects zero-extent rects, so degenerate bounds get a hair
// of width.
const minExtent = 1e-9

func boundsRect(b *geom.Bounds) (*rtreego.Rect, error) {
	lengths := []float64{b.Max(0) - b.Min(0), b.Max(1) - b.Min(1)}
	for i, l := range lengths {
		if l < minExtent {
			lengths[i] = minExtent
		}
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.Min(0), b.Min(1)}, lengths)
	if err != nil {
		return nil, eris.Wrap(err, "geomops: bounds rect")
	}
	return rect, nil
}
