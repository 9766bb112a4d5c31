package aggregate

import (
	"math"
	"strings"
	"testing"

	"paddock-api/internal/area"
	"paddock-api/internal/geometry"
	"paddock-api/internal/paddock"
)

func validOutcome(planar, geodesic float64) paddock.Outcome {
	g := &geometry.Geometry{Kind: geometry.KindPolygon, Type: "Polygon"}
	return paddock.Valid(g, area.NewResult(planar, geodesic))
}

func props(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  string
		ok    bool
	}{
		{"first key wins", props("owner", "a", "Owner", "b"), "a", true},
		{"skips blank", props("owner", "  ", "Owner", "b"), "b", true},
		{"skips null", props("owner", nil, "OWNER", "c"), "c", true},
		{"case sensitive", props("oWnEr", "x"), "", false},
		{"non string", props("owner", 42.0), "42", true},
		{"trimmed", props("owner", " Smith "), "Smith", true},
		{"missing", props(), "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Lookup(tc.props, OwnerKeys)
			if got != tc.want || ok != tc.ok {
				t.Errorf("Lookup = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestIsInfrastructure(t *testing.T) {
	for name, want := range map[string]bool{
		"Machinery Shed": true,
		"HOUSE paddock":  true,
		"Old Building":   true,
		"Shedley Flats":  true,
		"North Paddock":  false,
		"":               false,
	} {
		if got := IsInfrastructure(name); got != want {
			t.Errorf("IsInfrastructure(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestGroupingPreservesInputOrder(t *testing.T) {
	batch, groups := Aggregate([]Entry{
		{props("owner", "O", "project", "P1", "name", "A"), validOutcome(100, 110)},
		{props("owner", "O", "project", "P2", "name", "B"), validOutcome(50, 55)},
		{props("owner", "O", "project", "P1", "name", "C"), validOutcome(10, 11)},
	})
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	p1 := groups[0]
	if p1.Project != "P1" || p1.PaddockCount != 2 || p1.ValidCount != 2 {
		t.Errorf("P1 = %+v", p1)
	}
	if p1.Paddocks[0].Name != "A" || p1.Paddocks[1].Name != "C" {
		t.Errorf("P1 rows out of order: %+v", p1.Paddocks)
	}
	if groups[1].PaddockCount != 1 {
		t.Errorf("P2 count = %d", groups[1].PaddockCount)
	}
	if batch.TotalPaddocks != 3 || batch.TotalGroups != 2 || batch.ValidPaddocks != 3 {
		t.Errorf("batch = %+v", batch)
	}
	if math.Abs(p1.Area.GeodesicM2-121) > 1e-9 || math.Abs(p1.Area.DifferenceM2-11) > 1e-9 {
		t.Errorf("P1 area = %+v", p1.Area)
	}
}

func TestNoProjectRouting(t *testing.T) {
	_, groups := Aggregate([]Entry{
		{props("owner", "Smith", "project", nil, "name", "East"), validOutcome(100, 120)},
	})
	if len(groups) != 1 {
		t.Fatalf("groups = %d", len(groups))
	}
	g := groups[0]
	if g.Owner != "Smith" || g.Project != InvalidBucket {
		t.Fatalf("key = (%q, %q)", g.Owner, g.Project)
	}
	row := g.Paddocks[0]
	if row.Note != NoProjectNote {
		t.Errorf("note = %q", row.Note)
	}
	if row.Area == nil || row.Area.GeodesicM2 != 120 {
		t.Errorf("valid geometry without project lost its area: %+v", row.Area)
	}
	if g.InvalidCount != 1 || g.ValidCount != 0 || g.Area.GeodesicM2 != 120 {
		t.Errorf("group = %+v", g)
	}
}

func TestInvalidGeometryRouting(t *testing.T) {
	_, groups := Aggregate([]Entry{
		{props("owner", "Smith", "project", "Wheat", "name", "West"), paddock.Invalid(geometry.ErrMissingGeometry)},
		{props("Owner", "Smith", "name", "South"), paddock.Invalid(geometry.ErrMissingGeometry)},
	})
	if len(groups) != 1 || groups[0].Project != InvalidBucket {
		t.Fatalf("groups = %+v", groups)
	}
	rows := groups[0].Paddocks
	if !strings.Contains(rows[0].Note, "Missing geometry") || !strings.HasSuffix(rows[0].Note, "(project: Wheat)") {
		t.Errorf("note = %q", rows[0].Note)
	}
	if rows[1].Note != NoProjectNote {
		t.Errorf("no-project precedence: note = %q", rows[1].Note)
	}
	if rows[0].Area != nil {
		t.Errorf("invalid geometry carries area")
	}
	if groups[0].InvalidCount != 2 || groups[0].Area.GeodesicM2 != 0 {
		t.Errorf("group = %+v", groups[0])
	}
}

func TestInfrastructureExcludedFromValid(t *testing.T) {
	batch, groups := Aggregate([]Entry{
		{props("owner", "O", "project", "P", "name", "Hay Shed"), validOutcome(10, 12)},
		{props("owner", "O", "project", "P", "name", "Paddock 1"), validOutcome(100, 120)},
	})
	g := groups[0]
	if g.ValidCount != 1 || g.InfrastructureCount != 1 || g.InvalidCount != 0 || g.PaddockCount != 2 {
		t.Errorf("group counts = %+v", g)
	}
	if g.Area.GeodesicM2 != 132 {
		t.Errorf("infrastructure area not summed: %v", g.Area.GeodesicM2)
	}
	if !g.Paddocks[0].Infrastructure {
		t.Errorf("row not flagged")
	}
	if batch.InfrastructurePaddocks != 1 || batch.ValidPaddocks != 1 {
		t.Errorf("batch = %+v", batch)
	}
}

func TestDefaultsAndSorting(t *testing.T) {
	_, groups := Aggregate([]Entry{
		{props("owner", "Zed", "project", "A"), validOutcome(1, 1)},
		{props("project", "B"), validOutcome(1, 1)},
		{props("owner", "Adams", "project", "Z"), validOutcome(1, 1)},
		{props("owner", "Adams", "project", "C"), validOutcome(1, 1)},
	})
	want := []GroupKey{{"Adams", "C"}, {"Adams", "Z"}, {"Unknown", "B"}, {"Zed", "A"}}
	if len(groups) != len(want) {
		t.Fatalf("groups = %d", len(groups))
	}
	for i, k := range want {
		if groups[i].Owner != k.Owner || groups[i].Project != k.Project {
			t.Errorf("groups[%d] = (%q, %q), want %v", i, groups[i].Owner, groups[i].Project, k)
		}
	}
	if groups[2].Paddocks[0].Name != DefaultName {
		t.Errorf("name default = %q", groups[2].Paddocks[0].Name)
	}
}

func TestBatchTotalsMatchGroups(t *testing.T) {
	entries := []Entry{
		{props("owner", "A", "project", "X"), validOutcome(1000.123, 1100.456)},
		{props("owner", "A"), validOutcome(200.5, 210.25)},
		{props("owner", "B", "project", "Y"), paddock.Invalid(nil)},
		{props("owner", "B", "project", "Y", "name", "house"), validOutcome(0, 0)},
		{props("owner", "C", "project", "X"), validOutcome(3.3, 3.4)},
	}
	batch, groups := Aggregate(entries)
	var count int
	var geo float64
	for _, g := range groups {
		count += g.PaddockCount
		geo += g.Area.GeodesicM2
	}
	if count != batch.TotalPaddocks || count != len(entries) {
		t.Errorf("paddock count %d, batch %d", count, batch.TotalPaddocks)
	}
	if math.Abs(geo-batch.Area.GeodesicM2) > 0.01 {
		t.Errorf("geodesic sum %.4f, batch %.4f", geo, batch.Area.GeodesicM2)
	}
	if batch.ValidPaddocks+batch.InvalidPaddocks+batch.InfrastructurePaddocks != batch.TotalPaddocks {
		t.Errorf("counters do not partition: %+v", batch)
	}
}

func TestEngineMatchesAggregate(t *testing.T) {
	e := NewEngine()
	e.Add(props("owner", "A", "project", "X"), validOutcome(1, 2))
	e.Add(props("owner", "A", "project", "X"), validOutcome(3, 4))
	batch, groups := e.Finalize()
	if batch.Area.PlanarM2 != 4 || batch.Area.GeodesicM2 != 6 || batch.Area.DifferencePercent != 50 {
		t.Errorf("batch area = %+v", batch.Area)
	}
	if len(groups) != 1 || groups[0].Area.Hectares() != 0.0006 {
		t.Errorf("groups = %+v", groups)
	}
}
