package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.geojson")
	data := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"Nbrhood": "Palace Hills", "Id": 1, "description": "hilly"},
			 "geometry": {"type": "Polygon", "coordinates": []}},
			{"type": "Feature", "properties": {"Nbrhood": "Old Town", "Id": 3, "description": "historic"},
			 "geometry": {"type": "Polygon", "coordinates": []}}
		]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	regions, err := LoadRegions(path)
	if err != nil {
		t.Fatalf("LoadRegions: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	if regions[0].Name != "Palace Hills" || regions[0].ID != 1 || regions[0].Description != "hilly" {
		t.Errorf("regions[0] = %+v", regions[0])
	}
}

func TestLoadRegionsMissingFile(t *testing.T) {
	if _, err := LoadRegions(filepath.Join(t.TempDir(), "absent.geojson")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestKnown(t *testing.T) {
	if !Known("Old Town") {
		t.Error("Old Town should be a known region")
	}
	if Known("Atlantis") {
		t.Error("Atlantis should not be a known region")
	}
	if len(RegionNames) != 19 {
		t.Errorf("RegionNames has %d entries, want 19", len(RegionNames))
	}
}
