// Package geo provides the region source of truth for the map view: the
// fixed list of St. Himark neighborhood names and the GeoJSON polygon
// metadata they are drawn from. Aggregation keys come from record location
// strings matched against these names; geometry itself is presentation
// concern and stays opaque here.
package geo

import (
	"encoding/json"
	"fmt"
	"os"
)

// RegionNames is the fixed list of known region names. Record locations
// outside this list still aggregate, but never match a polygon.
var RegionNames = []string{
	"Palace Hills",
	"Northwest",
	"Old Town",
	"Safe Town",
	"Southwest",
	"Downtown",
	"Wilson Forest",
	"Scenic Vista",
	"Broadview",
	"Chapparal",
	"Terrapin Springs",
	"Pepper Mill",
	"Cheddarford",
	"Easton",
	"Weston",
	"Southton",
	"Oak Willow",
	"East Parton",
	"West Parton",
}

// Region is the metadata of one named polygon.
type Region struct {
	Name        string `json:"name"`
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// geoJSON covers just the properties the dashboard reads; geometry is
// carried through untouched for the client.
type geoJSON struct {
	Features []struct {
		Properties struct {
			Nbrhood     string `json:"Nbrhood"`
			ID          int    `json:"Id"`
			Description string `json:"description"`
		} `json:"properties"`
	} `json:"features"`
}

// LoadRegions reads region metadata from a GeoJSON file.
func LoadRegions(path string) ([]Region, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading geojson %s: %w", path, err)
	}
	var parsed geoJSON
	if err := json.Unmarshal(b, &parsed); err != nil {
		return nil, fmt.Errorf("parsing geojson %s: %w", path, err)
	}

	regions := make([]Region, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		regions = append(regions, Region{
			Name:        f.Properties.Nbrhood,
			ID:          f.Properties.ID,
			Description: f.Properties.Description,
		})
	}
	return regions, nil
}

// Known reports whether name is one of the fixed region names.
func Known(name string) bool {
	for _, r := range RegionNames {
		if r == name {
			return true
		}
	}
	return false
}
