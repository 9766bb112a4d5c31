package area

import (
	"math"

	"paddock-api/internal/geometry"
)

// 文档注释：平面近似的每度米数（中纬度 ~45°N 标定）
// 约束：经纬度直接当作笛卡尔坐标，再乘固定系数；高纬度或南北向狭长地块误差明显。
// 测地与平面的“差值”字段以此近似为基准定义，因此不随纬度修正。
const (
	MetersPerDegreeLat = 111_320.0
	MetersPerDegreeLon = 78_847.0
)

// shoelace 返回环的有符号面积（平方度）
func shoelace(r geometry.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	var s float64
	for i := 0; i < len(r)-1; i++ {
		s += r[i].Lon*r[i+1].Lat - r[i+1].Lon*r[i].Lat
	}
	last := len(r) - 1
	if r[0] != r[last] {
		s += r[last].Lon*r[0].Lat - r[0].Lon*r[last].Lat
	}
	return s / 2
}

// polygonPlanarDeg2：外环绝对面积减去各洞绝对面积，不小于 0
func polygonPlanarDeg2(p geometry.Polygon) float64 {
	a := math.Abs(shoelace(p.Exterior()))
	for _, h := range p.Holes() {
		a -= math.Abs(shoelace(h))
	}
	return math.Max(a, 0)
}

// PlanarM2 平面近似面积（平方米）
func PlanarM2(g *geometry.Geometry) float64 {
	if !g.Polygonal() {
		return 0
	}
	var sum float64
	for _, p := range g.Polygons {
		sum += polygonPlanarDeg2(p)
	}
	return sum * MetersPerDegreeLat * MetersPerDegreeLon
}
