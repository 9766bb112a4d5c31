// 包 normalize：把几何处理结果写回输出要素，附加面积属性或错误标记
package normalize

import (
	"encoding/json"
	"fmt"
	"math"

	"paddock-api/internal/paddock"
)

// 输出要素上追加/覆盖的属性键
const (
	KeyPlanarM2          = "area_planar_m2"
	KeyGeodesicM2        = "area_geodesic_m2"
	KeyAreaM2            = "area_m2"
	KeyAreaHa            = "area_ha"
	KeyAreaAc            = "area_ac"
	KeyDifferenceM2      = "area_difference_m2"
	KeyDifferencePercent = "area_difference_percent"
	KeyGeometryValid     = "geometry_valid"
	KeyGeometryError     = "geometry_error"
)

// Round2 展示用的两位小数舍入；仅在对外输出边界调用
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

func copyProps(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+8)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// 文档注释：生成输出要素
// 约束：成功时几何替换为修复后的几何（非面类型保留原载荷），属性保留原键并写入面积字段（两位小数）；
// 失败时原几何原样保留，写入 geometry_valid=false 与可读错误文本。输入要素不被修改。
// 异常：仅在修复后几何无法编码时返回错误。
func Feature(f paddock.Feature, o paddock.Outcome) (paddock.Feature, error) {
	out := paddock.Feature{Type: "Feature", ID: f.ID, Geometry: f.Geometry}
	props := copyProps(f.Properties)

	if !o.IsValid() {
		props[KeyGeometryValid] = false
		props[KeyGeometryError] = o.Err().Error()
		out.Properties = props
		return out, nil
	}

	if g := o.Geometry(); g.Polygonal() {
		b, err := json.Marshal(g)
		if err != nil {
			return paddock.Feature{}, fmt.Errorf("encode repaired geometry: %w", err)
		}
		out.Geometry = b
	}
	r, _ := o.Area()
	props[KeyPlanarM2] = Round2(r.PlanarM2)
	props[KeyGeodesicM2] = Round2(r.GeodesicM2)
	props[KeyAreaM2] = Round2(r.GeodesicM2)
	props[KeyAreaHa] = Round2(r.Hectares())
	props[KeyAreaAc] = Round2(r.Acres())
	props[KeyDifferenceM2] = Round2(r.DifferenceM2)
	props[KeyDifferencePercent] = Round2(r.DifferencePercent)
	props[KeyGeometryValid] = true
	out.Properties = props
	return out, nil
}
