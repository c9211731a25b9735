// Package territory carries the Dominion Energy Virginia service
// territory registry: every county and independent city in the
// territory, keyed by FIPS and grouped by canvassing region.
package territory

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Region is a canvassing region within the service territory.
type Region string

const (
	RegionRichmondMetro    Region = "Richmond Metro"
	RegionHamptonRoads     Region = "Hampton Roads"
	RegionNorthernNeck     Region = "Northern Neck / Middle Peninsula"
	RegionSouthside        Region = "Southside"
	RegionCentral          Region = "Central Virginia"
	RegionNorthernVirginia Region = "Northern Virginia"
)

// County is one county or independent city in the territory.
type County struct {
	FIPS   string // 5-digit state+county FIPS
	Name   string
	Region Region
}

var counties = []County{
	{"51760", "Richmond City", RegionRichmondMetro},
	{"51087", "Henrico County", RegionRichmondMetro},
	{"51041", "Chesterfield County", RegionRichmondMetro},
	{"51085", "Hanover County", RegionRichmondMetro},
	{"51036", "Charles City County", RegionRichmondMetro},
	{"51127", "New Kent County", RegionRichmondMetro},
	{"51075", "Goochland County", RegionRichmondMetro},
	{"51145", "Powhatan County", RegionRichmondMetro},
	{"51570", "Colonial Heights", RegionRichmondMetro},
	{"51670", "Hopewell", RegionRichmondMetro},
	{"51730", "Petersburg", RegionRichmondMetro},
	{"51149", "Prince George County", RegionRichmondMetro},
	{"51053", "Dinwiddie County", RegionRichmondMetro},

	{"51550", "Chesapeake", RegionHamptonRoads},
	{"51710", "Norfolk", RegionHamptonRoads},
	{"51810", "Virginia Beach", RegionHamptonRoads},
	{"51740", "Portsmouth", RegionHamptonRoads},
	{"51650", "Hampton", RegionHamptonRoads},
	{"51700", "Newport News", RegionHamptonRoads},
	{"51830", "Williamsburg", RegionHamptonRoads},
	{"51095", "James City County", RegionHamptonRoads},
	{"51199", "York County", RegionHamptonRoads},
	{"51073", "Gloucester County", RegionHamptonRoads},
	{"51115", "Mathews County", RegionHamptonRoads},
	{"51093", "Isle of Wight County", RegionHamptonRoads},
	{"51181", "Surry County", RegionHamptonRoads},
	{"51175", "Southampton County", RegionHamptonRoads},
	{"51620", "Franklin", RegionHamptonRoads},
	{"51800", "Suffolk", RegionHamptonRoads},

	{"51103", "Lancaster County", RegionNorthernNeck},
	{"51133", "Northumberland County", RegionNorthernNeck},
	{"51159", "Richmond County", RegionNorthernNeck},
	{"51193", "Westmoreland County", RegionNorthernNeck},
	{"51057", "Essex County", RegionNorthernNeck},
	{"51097", "King and Queen County", RegionNorthernNeck},
	{"51101", "King William County", RegionNorthernNeck},
	{"51119", "Middlesex County", RegionNorthernNeck},

	{"51590", "Danville", RegionSouthside},
	{"51143", "Pittsylvania County", RegionSouthside},
	{"51083", "Halifax County", RegionSouthside},
	{"51117", "Mecklenburg County", RegionSouthside},
	{"51111", "Lunenburg County", RegionSouthside},
	{"51025", "Brunswick County", RegionSouthside},
	{"51081", "Greensville County", RegionSouthside},
	{"51595", "Emporia", RegionSouthside},
	{"51183", "Sussex County", RegionSouthside},

	{"51007", "Amelia County", RegionCentral},
	{"51135", "Nottoway County", RegionCentral},
	{"51147", "Prince Edward County", RegionCentral},
	{"51037", "Charlotte County", RegionCentral},
	{"51029", "Buckingham County", RegionCentral},
	{"51049", "Cumberland County", RegionCentral},
	{"51011", "Appomattox County", RegionCentral},
	{"51031", "Campbell County", RegionCentral},
	{"51680", "Lynchburg", RegionCentral},
	{"51009", "Amherst County", RegionCentral},
	{"51019", "Bedford County", RegionCentral},
	{"51515", "Bedford City", RegionCentral},

	{"51059", "Fairfax County", RegionNorthernVirginia},
	{"51600", "Fairfax City", RegionNorthernVirginia},
	{"51610", "Falls Church", RegionNorthernVirginia},
	{"51013", "Arlington County", RegionNorthernVirginia},
	{"51510", "Alexandria", RegionNorthernVirginia},
	{"51153", "Prince William County", RegionNorthernVirginia},
	{"51683", "Manassas", RegionNorthernVirginia},
	{"51685", "Manassas Park", RegionNorthernVirginia},
	{"51107", "Loudoun County", RegionNorthernVirginia},
	{"51043", "Clarke County", RegionNorthernVirginia},
	{"51061", "Fauquier County", RegionNorthernVirginia},
	{"51137", "Orange County", RegionNorthernVirginia},
	{"51109", "Louisa County", RegionNorthernVirginia},
	{"51065", "Fluvanna County", RegionNorthernVirginia},
	{"51003", "Albemarle County", RegionNorthernVirginia},
	{"51540", "Charlottesville", RegionNorthernVirginia},
	{"51079", "Greene County", RegionNorthernVirginia},
	{"51113", "Madison County", RegionNorthernVirginia},
	{"51157", "Rappahannock County", RegionNorthernVirginia},
	{"51047", "Culpeper County", RegionNorthernVirginia},
}

var byFIPS = func() map[string]County {
	m := make(map[string]County, len(counties))
	for _, c := range counties {
		m[c.FIPS] = c
	}
	return m
}()

// Counties returns the full registry sorted by FIPS.
func Counties() []County {
	out := make([]County, len(counties))
	copy(out, counties)
	sort.Slice(out, func(i, j int) bool { return out[i].FIPS < out[j].FIPS })
	return out
}

// ByFIPS looks up a county by its 5-digit FIPS code.
func ByFIPS(fips string) (County, bool) {
	c, ok := byFIPS[fips]
	return c, ok
}

// NameOf returns the county name for a 5-digit FIPS, or an error when
// the code is not in the territory.
func NameOf(fips string) (string, error) {
	c, ok := byFIPS[fips]
	if !ok {
		return "", eris.Errorf("territory: FIPS %q not in territory", fips)
	}
	return c.Name, nil
}

// Regions lists the canvassing regions in registry order.
func Regions() []Region {
	return []Region{
		RegionRichmondMetro,
		RegionHamptonRoads,
		RegionNorthernNeck,
		RegionSouthside,
		RegionCentral,
		RegionNorthernVirginia,
	}
}

// Summary returns the county count per region.
func Summary() map[Region]int {
	m := map[Region]int{}
	for _, c := range counties {
		m[c.Region]++
	}
	return m
}
