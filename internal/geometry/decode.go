package geometry

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// 不计面积但可解析的 GeoJSON 类型（小写键 → 规范名）
var unsupportedTypes = map[string]string{
	"point":              "Point",
	"multipoint":         "MultiPoint",
	"linestring":         "LineString",
	"multilinestring":    "MultiLineString",
	"geometrycollection": "GeometryCollection",
}

// isNull：载荷缺失或为 JSON null
func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// 文档注释：解析 GeoJSON 几何载荷
// 约束：类型名大小写不敏感；Polygon/MultiPolygon 的坐标必须是规整数组，位置至少两个有限数值；
// 未闭合的环自动以首点闭合，闭合后不足 4 点视为解析失败；coordinates 为空数组时得到空几何。
// 异常：所有结构性问题返回 DecodeError。
func Decode(raw json.RawMessage) (*Geometry, error) {
	if isNull(raw) {
		return nil, &Error{Kind: MissingGeometry}
	}
	var g map[string]any
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, decodeErr("%v", err)
	}
	if g == nil {
		return nil, &Error{Kind: MissingGeometry}
	}
	return decodeObject(g)
}

func decodeObject(g map[string]any) (*Geometry, error) {
	t := strings.ToLower(getStr(g, "type"))
	switch t {
	case "polygon":
		poly, err := decodePolygon(g["coordinates"])
		if err != nil {
			return nil, err
		}
		out := &Geometry{Kind: KindPolygon, Type: "Polygon"}
		if len(poly.Rings) > 0 {
			out.Polygons = []Polygon{poly}
		}
		return out, nil
	case "multipolygon":
		parts, ok := g["coordinates"].([]any)
		if !ok {
			return nil, decodeErr("multipolygon coordinates must be an array")
		}
		out := &Geometry{Kind: KindMultiPolygon, Type: "MultiPolygon"}
		for i, part := range parts {
			poly, err := decodePolygon(part)
			if err != nil {
				return nil, decodeErr("part %d: %s", i, err.(*Error).Detail)
			}
			if len(poly.Rings) > 0 {
				out.Polygons = append(out.Polygons, poly)
			}
		}
		return out, nil
	}
	if name, ok := unsupportedTypes[t]; ok {
		return &Geometry{Kind: KindUnsupported, Type: name}, nil
	}
	if t == "" {
		return nil, decodeErr("geometry type is missing")
	}
	return nil, decodeErr("unknown geometry type %q", getStr(g, "type"))
}

func decodePolygon(v any) (Polygon, error) {
	rings, ok := v.([]any)
	if !ok {
		return Polygon{}, decodeErr("polygon coordinates must be an array of rings")
	}
	out := make([]Ring, 0, len(rings))
	for i, r := range rings {
		ring, err := decodeRing(r)
		if err != nil {
			return Polygon{}, decodeErr("ring %d: %s", i, err.(*Error).Detail)
		}
		out = append(out, ring)
	}
	if len(out) == 0 {
		return Polygon{}, nil
	}
	return newPolygon(out), nil
}

func decodeRing(v any) (Ring, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, decodeErr("ring must be an array of positions")
	}
	ring := make(Ring, 0, len(arr)+1)
	for j, p := range arr {
		pos, ok := p.([]any)
		if !ok || len(pos) < 2 {
			return nil, decodeErr("position %d must hold at least two numbers", j)
		}
		lon, ok1 := toFloat(pos[0])
		lat, ok2 := toFloat(pos[1])
		if !ok1 || !ok2 {
			return nil, decodeErr("position %d is not numeric", j)
		}
		if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
			return nil, decodeErr("position %d is not finite", j)
		}
		ring = append(ring, Point{Lon: lon, Lat: lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	if len(ring) < 4 {
		return nil, decodeErr("ring has %d positions, at least 4 required", len(ring))
	}
	return ring, nil
}

// collectPolygons 从 GEOS 修复结果中提取多边形部分
// 约束：GeometryCollection 递归展开；点线等低维部分直接丢弃。
func collectPolygons(g map[string]any, out *[]Polygon) error {
	switch strings.ToLower(getStr(g, "type")) {
	case "polygon", "multipolygon":
		geom, err := decodeObject(g)
		if err != nil {
			return err
		}
		*out = append(*out, geom.Polygons...)
	case "geometrycollection":
		members, _ := g["geometries"].([]any)
		for _, m := range members {
			if mm, ok := m.(map[string]any); ok {
				if err := collectPolygons(mm, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
