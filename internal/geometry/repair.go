package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geos"
)

// 文档注释：几何修复入口（解析 → 有效性判定 → MakeValid → 再判定）
// 约束：纯函数，修复只尝试一次；有效输入原样返回坐标（幂等）；非面类型直接返回 Unsupported。
// 异常：缺失 → MissingGeometry；结构错误 → DecodeError；修复后仍无效 → UnrepairableGeometry；
// 修复后无面 → EmptyGeometry。
func Repair(raw json.RawMessage) (*Geometry, error) {
	g, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if !g.Polygonal() {
		return g, nil
	}
	if g.IsEmpty() {
		return nil, &Error{Kind: EmptyGeometry}
	}
	return validate(g)
}

// validate 使用 GEOS 判定 OGC 有效性，必要时执行 MakeValid
// 约束：GEOS 在异常输入上可能 panic，此处统一转为 UnrepairableGeometry。
func validate(g *Geometry) (out *Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &Error{Kind: UnrepairableGeometry, Detail: fmt.Sprint(r)}
		}
	}()
	b, err := json.Marshal(g)
	if err != nil {
		return nil, decodeErr("%v", err)
	}
	gg, err := geos.NewGeomFromGeoJSON(string(b))
	if err != nil {
		return nil, decodeErr("%v", err)
	}
	if gg.IsValid() {
		return g, nil
	}
	reason := gg.IsValidReason()
	fixed := gg.MakeValidWithParams(geos.MakeValidLinework, geos.MakeValidDiscardCollapsed)
	if fixed == nil || !fixed.IsValid() {
		return nil, &Error{Kind: UnrepairableGeometry, Detail: reason}
	}
	var fj map[string]any
	if err := json.Unmarshal([]byte(fixed.ToGeoJSON(-1)), &fj); err != nil {
		return nil, &Error{Kind: UnrepairableGeometry, Detail: err.Error()}
	}
	var polys []Polygon
	if err := collectPolygons(fj, &polys); err != nil {
		return nil, &Error{Kind: UnrepairableGeometry, Detail: err.Error()}
	}
	repaired := &Geometry{Polygons: polys, Repaired: true}
	if repaired.IsEmpty() {
		return nil, &Error{Kind: EmptyGeometry}
	}
	if len(polys) == 1 {
		repaired.Kind, repaired.Type = KindPolygon, "Polygon"
	} else {
		repaired.Kind, repaired.Type = KindMultiPolygon, "MultiPolygon"
	}
	return repaired, nil
}
