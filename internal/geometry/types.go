// 包 geometry：地块几何的解析、有效性判定与修复；输出只含多边形环的内存结构
package geometry

import (
	"encoding/json"
	"fmt"
)

// 点坐标（WGS84，经度在前，与 GeoJSON 顺序一致）
type Point struct {
	Lon float64
	Lat float64
}

// Ring：闭合环，首点与末点相同且至少 4 个点
type Ring []Point

// Polygon：按 GeoJSON 约定的环集合，第一环是外环，其后为洞
type Polygon struct {
	Rings []Ring
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// Exterior 返回外环；空多边形返回 nil
func (p Polygon) Exterior() Ring {
	if len(p.Rings) == 0 {
		return nil
	}
	return p.Rings[0]
}

// Holes 返回内环（洞）
func (p Polygon) Holes() []Ring {
	if len(p.Rings) < 2 {
		return nil
	}
	return p.Rings[1:]
}

// Kind：几何类型的封闭枚举
// 约束：面积计算只认 Polygon/MultiPolygon；其它 GeoJSON 类型统一归为 Unsupported，面积恒为 0。
type Kind int

const (
	KindUnsupported Kind = iota
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unsupported"
	}
}

// 文档注释：已校验的地块几何
// 约束：KindPolygon 恰有一个 Polygon；KindMultiPolygon 至少一个；KindUnsupported 不含环，
// Type 保留原始 GeoJSON 类型名（如 Point）。Repaired 标记该几何是否经过 MakeValid 修复。
type Geometry struct {
	Kind     Kind
	Type     string
	Polygons []Polygon
	Repaired bool
}

// Polygonal 表示几何是否携带可计算面积的环
func (g *Geometry) Polygonal() bool {
	return g != nil && (g.Kind == KindPolygon || g.Kind == KindMultiPolygon)
}

// IsEmpty：没有任何非空外环
func (g *Geometry) IsEmpty() bool {
	if g == nil {
		return true
	}
	for _, p := range g.Polygons {
		if len(p.Exterior()) > 0 {
			return false
		}
	}
	return true
}

// BBox 返回所有多边形的合并包围盒
func (g *Geometry) BBox() [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, p := range g.Polygons {
		if p.BBox[0] < b[0] {
			b[0] = p.BBox[0]
		}
		if p.BBox[1] < b[1] {
			b[1] = p.BBox[1]
		}
		if p.BBox[2] > b[2] {
			b[2] = p.BBox[2]
		}
		if p.BBox[3] > b[3] {
			b[3] = p.BBox[3]
		}
	}
	return b
}

// newPolygon 组装多边形并计算外环包围盒
func newPolygon(rings []Ring) Polygon {
	p := Polygon{Rings: rings}
	p.BBox = computeBBox(p)
	return p
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, pt := range p.Exterior() {
		if pt.Lon < b[0] {
			b[0] = pt.Lon
		}
		if pt.Lat < b[1] {
			b[1] = pt.Lat
		}
		if pt.Lon > b[2] {
			b[2] = pt.Lon
		}
		if pt.Lat > b[3] {
			b[3] = pt.Lat
		}
	}
	return b
}

type geoJSON struct {
	Type        string    `json:"type"`
	BBox        []float64 `json:"bbox,omitempty"`
	Coordinates any       `json:"coordinates"`
}

func ringCoords(r Ring) [][]float64 {
	out := make([][]float64, len(r))
	for i, pt := range r {
		out[i] = []float64{pt.Lon, pt.Lat}
	}
	return out
}

func polygonCoords(p Polygon) [][][]float64 {
	out := make([][][]float64, len(p.Rings))
	for i, r := range p.Rings {
		out[i] = ringCoords(r)
	}
	return out
}

// MarshalJSON 输出 GeoJSON 几何对象（带 bbox 成员）
// 约束：Unsupported 几何没有可输出的坐标，调用方应保留原始载荷。
func (g Geometry) MarshalJSON() ([]byte, error) {
	switch g.Kind {
	case KindPolygon:
		if len(g.Polygons) != 1 {
			return nil, fmt.Errorf("polygon geometry holds %d parts", len(g.Polygons))
		}
		bb := g.BBox()
		return json.Marshal(geoJSON{Type: "Polygon", BBox: bb[:], Coordinates: polygonCoords(g.Polygons[0])})
	case KindMultiPolygon:
		parts := make([][][][]float64, len(g.Polygons))
		for i, p := range g.Polygons {
			parts[i] = polygonCoords(p)
		}
		bb := g.BBox()
		return json.Marshal(geoJSON{Type: "MultiPolygon", BBox: bb[:], Coordinates: parts})
	default:
		return nil, fmt.Errorf("cannot encode %s geometry", g.Type)
	}
}
