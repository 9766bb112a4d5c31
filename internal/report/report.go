// 包 report：对外报表模型（上传接口与命令行共用），所有数值在此处统一舍入到两位小数
package report

import (
	"paddock-api/internal/aggregate"
	"paddock-api/internal/analyser"
	"paddock-api/internal/normalize"
	"paddock-api/internal/paddock"
)

// 文档注释：单个地块行
// 约束：几何无效的行面积字段为 null；note 仅在路由到无效分组时非 null。
type PaddockDetail struct {
	Name              string   `json:"name"`
	Infrastructure    bool     `json:"infrastructure"`
	AreaHa            *float64 `json:"area_ha"`
	AreaAc            *float64 `json:"area_ac"`
	AreaPlanarM2      *float64 `json:"area_planar_m2"`
	AreaGeodesicM2    *float64 `json:"area_geodesic_m2"`
	DifferencePercent *float64 `json:"difference_percent"`
	Note              *string  `json:"note"`
}

// ProjectSummary 单个 (owner, project) 分组
type ProjectSummary struct {
	Owner                  string          `json:"owner"`
	ProjectName            string          `json:"project_name"`
	PaddockCount           int             `json:"paddock_count"`
	ValidPaddocks          int             `json:"valid_paddocks"`
	InvalidPaddocks        int             `json:"invalid_paddocks"`
	InfrastructurePaddocks int             `json:"infrastructure_paddocks"`
	AreaPlanarM2           float64         `json:"area_planar_m2"`
	AreaGeodesicM2         float64         `json:"area_geodesic_m2"`
	AreaM2                 float64         `json:"area_m2"`
	AreaHa                 float64         `json:"area_ha"`
	AreaAc                 float64         `json:"area_ac"`
	DifferenceM2           float64         `json:"difference_m2"`
	DifferencePercent      float64         `json:"difference_percent"`
	Paddocks               []PaddockDetail `json:"paddocks"`
}

// UploadSummary 批次总计
type UploadSummary struct {
	TotalProjects          int     `json:"total_projects"`
	TotalPaddocks          int     `json:"total_paddocks"`
	ValidPaddocks          int     `json:"valid_paddocks"`
	InvalidPaddocks        int     `json:"invalid_paddocks"`
	InfrastructurePaddocks int     `json:"infrastructure_paddocks"`
	TotalAreaPlanarM2      float64 `json:"total_area_planar_m2"`
	TotalAreaGeodesicM2    float64 `json:"total_area_geodesic_m2"`
	TotalDifferenceM2      float64 `json:"total_difference_m2"`
	TotalDifferencePercent float64 `json:"total_difference_percent"`
	TotalAreaHa            float64 `json:"total_area_ha"`
	TotalAreaAc            float64 `json:"total_area_ac"`
}

// Response 上传接口返回体
type Response struct {
	Summary           UploadSummary             `json:"summary"`
	Projects          []ProjectSummary          `json:"projects"`
	NormalizedGeoJSON paddock.FeatureCollection `json:"normalized_geojson"`
}

func rounded(v float64) *float64 {
	r := normalize.Round2(v)
	return &r
}

func paddockRow(d aggregate.PaddockDetail) PaddockDetail {
	row := PaddockDetail{Name: d.Name, Infrastructure: d.Infrastructure}
	if d.Area != nil {
		row.AreaHa = rounded(d.Area.Hectares())
		row.AreaAc = rounded(d.Area.Acres())
		row.AreaPlanarM2 = rounded(d.Area.PlanarM2)
		row.AreaGeodesicM2 = rounded(d.Area.GeodesicM2)
		row.DifferencePercent = rounded(d.Area.DifferencePercent)
	}
	if d.Note != "" {
		note := d.Note
		row.Note = &note
	}
	return row
}

func projectSummary(g aggregate.GroupSummary) ProjectSummary {
	rows := make([]PaddockDetail, 0, len(g.Paddocks))
	for _, d := range g.Paddocks {
		rows = append(rows, paddockRow(d))
	}
	return ProjectSummary{
		Owner:                  g.Owner,
		ProjectName:            g.Project,
		PaddockCount:           g.PaddockCount,
		ValidPaddocks:          g.ValidCount,
		InvalidPaddocks:        g.InvalidCount,
		InfrastructurePaddocks: g.InfrastructureCount,
		AreaPlanarM2:           normalize.Round2(g.Area.PlanarM2),
		AreaGeodesicM2:         normalize.Round2(g.Area.GeodesicM2),
		AreaM2:                 normalize.Round2(g.Area.GeodesicM2),
		AreaHa:                 normalize.Round2(g.Area.Hectares()),
		AreaAc:                 normalize.Round2(g.Area.Acres()),
		DifferenceM2:           normalize.Round2(g.Area.DifferenceM2),
		DifferencePercent:      normalize.Round2(g.Area.DifferencePercent),
		Paddocks:               rows,
	}
}

// 文档注释：把分析结果转换为对外报表
// 约束：舍入只在此处进行，输入的全精度结果不被修改。
func FromAnalysis(rep *analyser.Report) Response {
	projects := make([]ProjectSummary, 0, len(rep.Groups))
	for _, g := range rep.Groups {
		projects = append(projects, projectSummary(g))
	}
	s := rep.Summary
	return Response{
		Summary: UploadSummary{
			TotalProjects:          s.TotalGroups,
			TotalPaddocks:          s.TotalPaddocks,
			ValidPaddocks:          s.ValidPaddocks,
			InvalidPaddocks:        s.InvalidPaddocks,
			InfrastructurePaddocks: s.InfrastructurePaddocks,
			TotalAreaPlanarM2:      normalize.Round2(s.Area.PlanarM2),
			TotalAreaGeodesicM2:    normalize.Round2(s.Area.GeodesicM2),
			TotalDifferenceM2:      normalize.Round2(s.Area.DifferenceM2),
			TotalDifferencePercent: normalize.Round2(s.Area.DifferencePercent),
			TotalAreaHa:            normalize.Round2(s.Area.Hectares()),
			TotalAreaAc:            normalize.Round2(s.Area.Acres()),
		},
		Projects:          projects,
		NormalizedGeoJSON: rep.Normalized,
	}
}
