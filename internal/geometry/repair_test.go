package geometry

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const squareJSON = `{"type":"Polygon","coordinates":[[[-109.5,47.0],[-109.4,47.0],[-109.4,47.1],[-109.5,47.1],[-109.5,47.0]]]}`

const bowTieJSON = `{"type":"Polygon","coordinates":[[[-109.5,47.0],[-109.4,47.1],[-109.4,47.0],[-109.5,47.1],[-109.5,47.0]]]}`

func TestRepairMissingGeometry(t *testing.T) {
	for _, raw := range []string{"", "null", "  null  "} {
		_, err := Repair(json.RawMessage(raw))
		if !errors.Is(err, ErrMissingGeometry) {
			t.Fatalf("Repair(%q) err = %v, want MissingGeometry", raw, err)
		}
		if !strings.Contains(err.Error(), "Missing geometry") {
			t.Errorf("message %q lacks 'Missing geometry'", err.Error())
		}
	}
}

func TestRepairDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `[1,2,3]`},
		{"missing type", `{"coordinates":[]}`},
		{"unknown type", `{"type":"Circle","coordinates":[0,0]}`},
		{"coordinates not array", `{"type":"Polygon","coordinates":"x"}`},
		{"position too short", `{"type":"Polygon","coordinates":[[[0],[1,0],[1,1],[0,0]]]}`},
		{"position not numeric", `{"type":"Polygon","coordinates":[[["a",0],[1,0],[1,1],[0,0]]]}`},
		{"ring too short", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}`},
		{"multipolygon part broken", `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0]]]]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Repair(json.RawMessage(tc.raw))
			var gerr *Error
			if !errors.As(err, &gerr) || gerr.Kind != DecodeError {
				t.Fatalf("err = %v, want DecodeError", err)
			}
		})
	}
}

func TestRepairUnsupportedTypes(t *testing.T) {
	for _, raw := range []string{
		`{"type":"Point","coordinates":[-109.5,47.0]}`,
		`{"type":"LineString","coordinates":[[-109.5,47.0],[-109.4,47.0]]}`,
		`{"type":"GeometryCollection","geometries":[]}`,
	} {
		g, err := Repair(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("Repair(%s) err = %v", raw, err)
		}
		if g.Kind != KindUnsupported || g.Polygonal() {
			t.Errorf("Repair(%s) kind = %v, want Unsupported", raw, g.Kind)
		}
	}
}

func TestRepairEmptyPolygon(t *testing.T) {
	_, err := Repair(json.RawMessage(`{"type":"Polygon","coordinates":[]}`))
	if !errors.Is(err, ErrEmptyGeometry) {
		t.Fatalf("err = %v, want EmptyGeometry", err)
	}
}

func TestRepairValidIsUnchanged(t *testing.T) {
	g, err := Repair(json.RawMessage(squareJSON))
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if g.Repaired {
		t.Errorf("valid geometry should not be marked repaired")
	}
	if g.Kind != KindPolygon || len(g.Polygons) != 1 {
		t.Fatalf("kind=%v parts=%d", g.Kind, len(g.Polygons))
	}
	ext := g.Polygons[0].Exterior()
	if len(ext) != 5 || ext[1] != (Point{Lon: -109.4, Lat: 47.0}) {
		t.Errorf("exterior changed: %v", ext)
	}
	again, err := Repair(mustMarshal(t, g))
	if err != nil {
		t.Fatalf("second Repair: %v", err)
	}
	if len(again.Polygons[0].Exterior()) != len(ext) {
		t.Errorf("repair is not idempotent")
	}
}

func TestRepairClosesOpenRing(t *testing.T) {
	raw := `{"type":"polygon","coordinates":[[[-109.5,47.0],[-109.4,47.0],[-109.4,47.1],[-109.5,47.1]]]}`
	g, err := Repair(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	ext := g.Polygons[0].Exterior()
	if len(ext) != 5 || ext[0] != ext[4] {
		t.Errorf("ring not closed: %v", ext)
	}
}

func TestRepairBowTie(t *testing.T) {
	g, err := Repair(json.RawMessage(bowTieJSON))
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !g.Repaired {
		t.Errorf("bow-tie should be marked repaired")
	}
	if g.IsEmpty() || !g.Polygonal() {
		t.Fatalf("repaired geometry empty or not polygonal: %+v", g)
	}
	for _, p := range g.Polygons {
		for _, r := range p.Rings {
			if len(r) < 4 || r[0] != r[len(r)-1] {
				t.Errorf("ring not closed or too short: %v", r)
			}
		}
	}
}

func TestRepairCollapsedRingIsEmpty(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[0,0],[1,0],[2,0],[0,0]]]}`
	_, err := Repair(json.RawMessage(raw))
	if err == nil {
		t.Fatalf("collinear ring should not repair to a polygon")
	}
	var gerr *Error
	if !errors.As(err, &gerr) || (gerr.Kind != EmptyGeometry && gerr.Kind != UnrepairableGeometry) {
		t.Fatalf("err = %v, want EmptyGeometry or UnrepairableGeometry", err)
	}
}

func TestMarshalJSONHasBBox(t *testing.T) {
	g, err := Repair(json.RawMessage(squareJSON))
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	var out struct {
		Type string    `json:"type"`
		BBox []float64 `json:"bbox"`
	}
	if err := json.Unmarshal(mustMarshal(t, g), &out); err != nil {
		t.Fatal(err)
	}
	want := []float64{-109.5, 47.0, -109.4, 47.1}
	if out.Type != "Polygon" || len(out.BBox) != 4 {
		t.Fatalf("got %+v", out)
	}
	for i := range want {
		if out.BBox[i] != want[i] {
			t.Errorf("bbox[%d] = %v, want %v", i, out.BBox[i], want[i])
		}
	}
}

func mustMarshal(t *testing.T, g *Geometry) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
