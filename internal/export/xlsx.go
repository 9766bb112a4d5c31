// 包 export：把报表导出为 XLSX 工作簿（Projects 汇总表 + Paddocks 明细表）
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"paddock-api/internal/logger"
	"paddock-api/internal/report"
)

const (
	ProjectsSheet = "Projects"
	PaddocksSheet = "Paddocks"
)

var projectHeaders = []string{
	"Owner", "Project", "Paddocks", "Valid", "Invalid", "Infrastructure",
	"Planar m²", "Geodesic m²", "Hectares", "Acres", "Difference m²", "Difference %",
}

var paddockHeaders = []string{
	"Owner", "Project", "Paddock", "Infrastructure",
	"Planar m²", "Geodesic m²", "Hectares", "Acres", "Difference %", "Note",
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// optional 空值写成空单元格
func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// 文档注释：生成 XLSX 工作簿字节
// 约束：数值直接取自已舍入的报表，不再二次计算；最后一行为批次总计。
func Workbook(resp report.Response) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProjectsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(PaddocksSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}

	row := 1
	if err := writeRow(f, ProjectsSheet, row, toAny(projectHeaders)...); err != nil {
		return nil, err
	}
	for _, p := range resp.Projects {
		row++
		if err := writeRow(f, ProjectsSheet, row,
			p.Owner, p.ProjectName, p.PaddockCount, p.ValidPaddocks, p.InvalidPaddocks, p.InfrastructurePaddocks,
			p.AreaPlanarM2, p.AreaGeodesicM2, p.AreaHa, p.AreaAc, p.DifferenceM2, p.DifferencePercent,
		); err != nil {
			return nil, err
		}
	}
	s := resp.Summary
	row++
	if err := writeRow(f, ProjectsSheet, row,
		"Total", "", s.TotalPaddocks, s.ValidPaddocks, s.InvalidPaddocks, s.InfrastructurePaddocks,
		s.TotalAreaPlanarM2, s.TotalAreaGeodesicM2, s.TotalAreaHa, s.TotalAreaAc, s.TotalDifferenceM2, s.TotalDifferencePercent,
	); err != nil {
		return nil, err
	}

	prow := 1
	if err := writeRow(f, PaddocksSheet, prow, toAny(paddockHeaders)...); err != nil {
		return nil, err
	}
	for _, p := range resp.Projects {
		for _, d := range p.Paddocks {
			prow++
			if err := writeRow(f, PaddocksSheet, prow,
				p.Owner, p.ProjectName, d.Name, d.Infrastructure,
				optional(d.AreaPlanarM2), optional(d.AreaGeodesicM2), optional(d.AreaHa), optional(d.AreaAc),
				optional(d.DifferencePercent), optionalText(d.Note),
			); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(ProjectsSheet, "A", "B", 24)
	_ = f.SetColWidth(ProjectsSheet, "G", "L", 16)
	_ = f.SetColWidth(PaddocksSheet, "A", "C", 24)
	_ = f.SetColWidth(PaddocksSheet, "E", "I", 16)
	_ = f.SetColWidth(PaddocksSheet, "J", "J", 48)
	_ = f.SetPanes(ProjectsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	_ = f.SetPanes(PaddocksSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	logger.L().Debug("export_xlsx_ok",
		"projects", len(resp.Projects),
		"paddocks", prow-1,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
