// 包 paddock：地块要素的数据模型（输入要素、要素集合、几何处理结果）
package paddock

import (
	"encoding/json"

	"paddock-api/internal/area"
	"paddock-api/internal/geometry"
)

// 文档注释：GeoJSON 要素
// 约束：Geometry 保留原始字节，缺失或 null 表示无几何；Properties 为任意键值，核心流程只读不写。
type Feature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// FeatureCollection：上传文件的顶层结构
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// 文档注释：单个要素的几何处理结果（二选一）
// 约束：应通过 Valid/Invalid 构造；Valid 携带修复后的几何与面积，Invalid 只携带失败原因。
// 零值视为解析失败。
type Outcome struct {
	valid bool
	geom  *geometry.Geometry
	area  area.Result
	err   *geometry.Error
}

// Valid 构造成功结果
func Valid(g *geometry.Geometry, r area.Result) Outcome {
	return Outcome{valid: true, geom: g, area: r}
}

// Invalid 构造失败结果；err 为 nil 时按解析失败处理
func Invalid(err *geometry.Error) Outcome {
	if err == nil {
		err = &geometry.Error{Kind: geometry.DecodeError}
	}
	return Outcome{err: err}
}

func (o Outcome) IsValid() bool { return o.valid }

func (o Outcome) Geometry() *geometry.Geometry { return o.geom }

// Area 返回面积结果；失败结果返回 false
func (o Outcome) Area() (area.Result, bool) { return o.area, o.valid }

// Err 返回失败原因；成功结果返回 nil
func (o Outcome) Err() *geometry.Error {
	if o.valid {
		return nil
	}
	if o.err == nil {
		return &geometry.Error{Kind: geometry.DecodeError}
	}
	return o.err
}
