package normalize

import (
	"encoding/json"
	"testing"

	"paddock-api/internal/area"
	"paddock-api/internal/geometry"
	"paddock-api/internal/paddock"
)

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1.234, 1.23},
		{1.235, 1.24},
		{-0.004, 0},
		{84472301.1299, 84472301.13},
	}
	for _, tc := range tests {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFeatureValid(t *testing.T) {
	raw := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}`)
	g, err := geometry.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	in := paddock.Feature{
		Type:       "Feature",
		Geometry:   raw,
		Properties: map[string]any{"name": "North", "area_m2": 1.0, "custom": "kept"},
	}
	res := area.NewResult(1000.004, 1234.5678)
	out, err := Feature(in, paddock.Valid(g, res))
	if err != nil {
		t.Fatalf("Feature: %v", err)
	}
	p := out.Properties
	if p["custom"] != "kept" || p["name"] != "North" {
		t.Errorf("original keys lost: %v", p)
	}
	if p[KeyGeometryValid] != true {
		t.Errorf("geometry_valid = %v", p[KeyGeometryValid])
	}
	checks := map[string]float64{
		KeyPlanarM2:          1000,
		KeyGeodesicM2:        1234.57,
		KeyAreaM2:            1234.57,
		KeyAreaHa:            0.12,
		KeyAreaAc:            0.31,
		KeyDifferenceM2:      234.56,
		KeyDifferencePercent: 23.46,
	}
	for k, want := range checks {
		if got, _ := p[k].(float64); got != want {
			t.Errorf("%s = %v, want %v", k, p[k], want)
		}
	}
	if _, ok := in.Properties[KeyGeometryValid]; ok {
		t.Errorf("input properties were mutated")
	}
	var geo struct {
		Coordinates [][][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(out.Geometry, &geo); err != nil {
		t.Fatal(err)
	}
	if n := len(geo.Coordinates[0]); n != 5 {
		t.Errorf("normalized ring has %d points, want closed ring of 5", n)
	}
}

func TestFeatureInvalidKeepsOriginalGeometry(t *testing.T) {
	raw := json.RawMessage(`{"type":"Polygon","coordinates":"broken"}`)
	in := paddock.Feature{Type: "Feature", Geometry: raw, Properties: map[string]any{"name": "Bad"}}
	out, err := Feature(in, paddock.Invalid(&geometry.Error{Kind: geometry.UnrepairableGeometry}))
	if err != nil {
		t.Fatal(err)
	}
	if string(out.Geometry) != string(raw) {
		t.Errorf("geometry = %s, want original", out.Geometry)
	}
	if out.Properties[KeyGeometryValid] != false {
		t.Errorf("geometry_valid = %v", out.Properties[KeyGeometryValid])
	}
	if out.Properties[KeyGeometryError] != "Geometry could not be repaired" {
		t.Errorf("geometry_error = %v", out.Properties[KeyGeometryError])
	}
	if _, ok := out.Properties[KeyAreaM2]; ok {
		t.Errorf("invalid feature carries area")
	}
}

func TestFeatureUnsupportedKeepsPayload(t *testing.T) {
	raw := json.RawMessage(`{"type":"Point","coordinates":[1,2]}`)
	g, err := geometry.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Feature(paddock.Feature{Geometry: raw}, paddock.Valid(g, area.NewResult(0, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if string(out.Geometry) != string(raw) {
		t.Errorf("geometry = %s", out.Geometry)
	}
	if out.Properties[KeyAreaM2] != 0.0 {
		t.Errorf("area_m2 = %v", out.Properties[KeyAreaM2])
	}
}
