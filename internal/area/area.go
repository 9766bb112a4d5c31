// 包 area：地块面积计算，给出平面近似面积与 WGS84 椭球测地面积
package area

import (
	"errors"
	"fmt"
	"math"

	"paddock-api/internal/geometry"
)

const (
	SquareMetersPerHectare = 10_000.0
	AcresPerSquareMeter    = 0.000247105
)

// ErrNonFinite：计算中出现 NaN/Inf，属于缺陷，须向上报告而不是置零
var ErrNonFinite = errors.New("area: non-finite result")

// 文档注释：单个几何（或聚合组）的面积结果
// 约束：PlanarM2、GeodesicM2 非负；差值字段只能通过 NewResult 推导，平面面积为 0 时百分比为 0。
type Result struct {
	PlanarM2          float64
	GeodesicM2        float64
	DifferenceM2      float64
	DifferencePercent float64
}

// NewResult 由平面与测地面积推导差值字段
func NewResult(planarM2, geodesicM2 float64) Result {
	r := Result{PlanarM2: planarM2, GeodesicM2: geodesicM2}
	r.DifferenceM2 = geodesicM2 - planarM2
	if planarM2 != 0 {
		r.DifferencePercent = r.DifferenceM2 / planarM2 * 100
	}
	return r
}

// Hectares 以测地面积为准
func (r Result) Hectares() float64 { return r.GeodesicM2 / SquareMetersPerHectare }

// Acres 以测地面积为准
func (r Result) Acres() float64 { return r.GeodesicM2 * AcresPerSquareMeter }

// 文档注释：计算几何的平面与测地面积
// 约束：Unsupported 几何两项均为 0；多面逐部分求和；洞面积从所属外环中扣除。
// 异常：任一中间值非有限时返回 ErrNonFinite。
func Compute(g *geometry.Geometry) (Result, error) {
	if !g.Polygonal() {
		return NewResult(0, 0), nil
	}
	var planar, geodesic float64
	for i, p := range g.Polygons {
		pa := polygonPlanarDeg2(p) * MetersPerDegreeLat * MetersPerDegreeLon
		if !finite(pa) {
			return Result{}, fmt.Errorf("polygon %d planar: %w", i, ErrNonFinite)
		}
		ga := polygonGeodesicM2(p)
		if !finite(ga) {
			return Result{}, fmt.Errorf("polygon %d geodesic: %w", i, ErrNonFinite)
		}
		planar += pa
		geodesic += ga
	}
	return NewResult(planar, geodesic), nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
