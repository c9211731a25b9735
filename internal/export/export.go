// Package export writes the zone inventory to a spreadsheet for
// canvassing route planning.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/emg-field-ops/fieldmap/internal/geojson"
	"github.com/emg-field-ops/fieldmap/internal/layer"
	"github.com/emg-field-ops/fieldmap/internal/territory"
)

// Row is one zone in the inventory.
type Row struct {
	Layer  string
	GEOID  string
	Name   string
	County string
	Region string
}

// BuildInventory flattens layers into inventory rows. The canvassing
// region is derived from the GEOID's county FIPS when the zone falls
// in the territory registry.
func BuildInventory(layers []layer.Layer) []Row {
	var rows []Row
	for _, l := range layers {
		if l.Collection == nil {
			continue
		}
		for _, f := range l.Collection.Features {
			r := Row{
				Layer:  l.Kind.Name(),
				GEOID:  geojson.StringProp(f, "GEOID"),
				Name:   geojson.StringProp(f, "NAME"),
				County: geojson.StringProp(f, "COUNTY_NAME"),
			}
			if len(r.GEOID) >= 5 {
				if c, ok := territory.ByFIPS(r.GEOID[:5]); ok {
					r.Region = string(c.Region)
					if r.County == "" {
						r.County = c.Name
					}
				}
			}
			rows = append(rows, r)
		}
	}
	return rows
}

var header = []string{"Layer", "GEOID", "Name", "County", "Region"}

// WriteXLSX writes the inventory to path as a single-sheet workbook.
func WriteXLSX(path string, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Zones")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Layer)
		row.AddCell().SetString(r.GEOID)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.County)
		row.AddCell().SetString(r.Region)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
