// Package qct carries the HUD Qualified Census Tract designations for
// Virginia within the service territory and the GEOID arithmetic the
// tract fetch relies on. A QCT is a census tract where at least half
// of households fall under 60% of area median income; customers there
// pre-qualify for state benefit programs.
package qct

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// 2025 HUD QCT designations, 11-digit GEOIDs (state 2 + county 3 +
// tract 6), grouped by locality.
var geoids = []string{
	// Richmond City (760)
	"51760000101", "51760000102", "51760000201", "51760000202",
	"51760000300", "51760000401", "51760000402", "51760000500",
	"51760000600", "51760000700", "51760000800", "51760000900",
	"51760001000", "51760001101", "51760001102", "51760001200",
	"51760020100", "51760020200", "51760020300", "51760020400",
	"51760020500", "51760020600", "51760020700", "51760020800",
	"51760020900", "51760021000", "51760021100", "51760021200",
	"51760030100", "51760030200", "51760030300", "51760030400",
	"51760030500", "51760030600", "51760030700", "51760030800",
	"51760040100", "51760040200", "51760040300", "51760040400",
	"51760040500", "51760040600", "51760040700", "51760040800",
	"51760050100", "51760050200", "51760050300", "51760050400",
	"51760050500", "51760050600", "51760050700", "51760050800",
	"51760060100", "51760060200", "51760060300", "51760060400",

	// Norfolk (710)
	"51710000100", "51710000200", "51710000300", "51710000400",
	"51710000500", "51710000600", "51710000700", "51710000800",
	"51710000900", "51710001000", "51710001100", "51710001200",
	"51710001300", "51710001400", "51710001500", "51710001600",
	"51710001700", "51710001800", "51710001900", "51710002000",
	"51710002100", "51710002200", "51710002300", "51710002400",
	"51710002500", "51710002600", "51710002700", "51710002800",
	"51710002900", "51710003000", "51710003100", "51710003200",
	"51710003300", "51710003400", "51710003500", "51710003600",
	"51710003700", "51710003800", "51710003900", "51710004000",
	"51710004100", "51710004200", "51710004300", "51710004400",
	"51710004500", "51710004600", "51710004700", "51710004800",

	// Virginia Beach (810)
	"51810040100", "51810040200", "51810040300", "51810040400",
	"51810040500", "51810040600", "51810040700", "51810040800",
	"51810040900", "51810041000", "51810041100", "51810041200",
	"51810041300", "51810041400", "51810041500", "51810041600",
	"51810042100", "51810042200", "51810042300", "51810042400",
	"51810042500", "51810042600", "51810044400", "51810044500",

	// Chesapeake (550)
	"51550020100", "51550020200", "51550020300", "51550020400",
	"51550020500", "51550020600", "51550020700", "51550020800",
	"51550020900", "51550021000", "51550021100", "51550021200",
	"51550021300", "51550021400", "51550021500", "51550021600",
	"51550021700", "51550021800", "51550021900", "51550022000",

	// Portsmouth (740)
	"51740200100", "51740200200", "51740200300", "51740200400",
	"51740200500", "51740200600", "51740200700", "51740200800",
	"51740200900", "51740201000", "51740201100", "51740201200",
	"51740201300", "51740201400", "51740201500", "51740201600",

	// Hampton (650)
	"51650010100", "51650010200", "51650010300", "51650010400",
	"51650010500", "51650010600", "51650010700", "51650010800",
	"51650010900", "51650011000", "51650011100", "51650011200",
	"51650011300", "51650011400", "51650011500", "51650011600",
	"51650011700", "51650011800", "51650011900", "51650012000",

	// Newport News (700)
	"51700030100", "51700030200", "51700030300", "51700030400",
	"51700030500", "51700030600", "51700030700", "51700030800",
	"51700030900", "51700031000", "51700031100", "51700031200",
	"51700031300", "51700031400", "51700031500", "51700031600",
	"51700031700", "51700031800", "51700031900", "51700032000",

	// Petersburg (730)
	"51730810100", "51730810200", "51730810300", "51730810400",
	"51730810500", "51730810600", "51730810700", "51730810800",

	// Henrico County (087)
	"51087200101", "51087200102", "51087200200", "51087200300",
	"51087200400", "51087200500", "51087200600", "51087200700",
	"51087200800", "51087200900", "51087201000", "51087201100",
	"51087201200", "51087201300", "51087201400", "51087201500",
	"51087201600", "51087201700", "51087201800", "51087201900",
	"51087202000", "51087202100", "51087202200", "51087202300",

	// Chesterfield County (041)
	"51041100100", "51041100200", "51041100300", "51041100400",
	"51041100500", "51041100600", "51041100700", "51041100800",
	"51041100900", "51041101000", "51041101100", "51041101200",

	// Suffolk (800)
	"51800830100", "51800830200", "51800830300", "51800830400",
	"51800830500", "51800830600", "51800830700", "51800830800",

	// Danville (590)
	"51590000100", "51590000200", "51590000300", "51590000400",
	"51590000500", "51590000600", "51590000700", "51590000800",
	"51590000900", "51590001000", "51590001100", "51590001200",

	// Lynchburg (680)
	"51680000100", "51680000200", "51680000300", "51680000400",
	"51680000500", "51680000600", "51680000700", "51680000800",
	"51680000900", "51680001000", "51680001100", "51680001200",

	// Hopewell (670)
	"51670800100", "51670800200", "51670800300", "51670800400",

	// Colonial Heights (570)
	"51570800100", "51570800200", "51570800300",

	// Northern Virginia
	"51510200100", "51510200200", "51510200300", "51510200400",
	"51510200500", "51510200600", "51510200700", "51510200800",
	"51013100100", "51013100200", "51013100300", "51013100400",
	"51059410100", "51059410200", "51059410300", "51059410400",
	"51059420100", "51059420200", "51059420300", "51059420400",
	"51059430100", "51059430200", "51059430300", "51059430400",

	// Charlottesville (540)
	"51540000100", "51540000200", "51540000300", "51540000400",
	"51540000500", "51540000600", "51540000700", "51540000800",
}

// GEOIDs returns the full designation list.
func GEOIDs() []string {
	out := make([]string, len(geoids))
	copy(out, geoids)
	return out
}

// Set returns the designations as a lookup set.
func Set() map[string]struct{} {
	s := make(map[string]struct{}, len(geoids))
	for _, g := range geoids {
		s[g] = struct{}{}
	}
	return s
}

// CountyOf returns the 3-digit county code embedded in an 11-digit
// tract GEOID. GEOIDs are otherwise opaque.
func CountyOf(geoid string) (string, error) {
	if len(geoid) < 5 {
		return "", eris.Errorf("qct: GEOID %q too short for county derivation", geoid)
	}
	return geoid[2:5], nil
}

// Counties returns the distinct county codes covered by the
// designation list, sorted.
func Counties() []string {
	seen := map[string]bool{}
	for _, g := range geoids {
		seen[g[2:5]] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Filter keeps only features whose GEOID property is in the
// designation set.
func Filter(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	set := Set()
	out := &geojson.FeatureCollection{}
	for _, f := range fc.Features {
		id, _ := f.Properties["GEOID"].(string)
		if _, ok := set[id]; ok {
			out.Features = append(out.Features, f)
		}
	}
	return out
}
