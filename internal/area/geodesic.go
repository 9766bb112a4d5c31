package area

import (
	"math"

	"paddock-api/internal/geometry"

	"github.com/tidwall/geodesic"
)

// 文档注释：WGS84 椭球上的环面积（GeographicLib 算法）
// 约束：以有符号方式计算后取绝对值，避免顺时针环被解释为“补集”面积；
// 去掉闭合重复点后不足 3 个不同顶点的退化环返回 0。
func ringGeodesicM2(r geometry.Ring) float64 {
	pts := r
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if distinctPoints(pts) < 3 {
		return 0
	}
	poly := geodesic.WGS84.PolygonInit(false)
	for _, pt := range pts {
		poly.AddPoint(pt.Lat, pt.Lon)
	}
	var a, perimeter float64
	poly.Compute(false, true, &a, &perimeter)
	return math.Abs(a)
}

func distinctPoints(pts []geometry.Point) int {
	seen := make(map[geometry.Point]struct{}, len(pts))
	for _, p := range pts {
		seen[p] = struct{}{}
	}
	return len(seen)
}

func polygonGeodesicM2(p geometry.Polygon) float64 {
	a := ringGeodesicM2(p.Exterior())
	for _, h := range p.Holes() {
		a -= ringGeodesicM2(h)
	}
	return math.Max(a, 0)
}

// GeodesicM2 测地面积（平方米），多面求和
func GeodesicM2(g *geometry.Geometry) float64 {
	if !g.Polygonal() {
		return 0
	}
	var sum float64
	for _, p := range g.Polygons {
		sum += polygonGeodesicM2(p)
	}
	return sum
}
