// 包 analyser：地块分析流程编排（修复 → 面积 → 规范化 → 聚合）
package analyser

import (
	"errors"
	"fmt"

	"paddock-api/internal/aggregate"
	"paddock-api/internal/area"
	"paddock-api/internal/geometry"
	"paddock-api/internal/logger"
	"paddock-api/internal/metrics"
	"paddock-api/internal/normalize"
	"paddock-api/internal/paddock"
)

// Report 一次批处理的完整结果（全精度，舍入在输出边界进行）
type Report struct {
	Summary    aggregate.BatchSummary
	Groups     []aggregate.GroupSummary
	Normalized paddock.FeatureCollection
}

// 文档注释：处理单个要素
// 约束：几何缺失、解析失败、无法修复均转为 Invalid 结果，不返回错误。
// 异常：仅面积出现非有限值或修复几何无法编码时返回错误（属于缺陷）。
func ProcessFeature(f paddock.Feature) (paddock.Feature, paddock.Outcome, error) {
	var o paddock.Outcome
	g, err := geometry.Repair(f.Geometry)
	if err != nil {
		var ge *geometry.Error
		if !errors.As(err, &ge) {
			ge = &geometry.Error{Kind: geometry.DecodeError, Detail: err.Error()}
		}
		o = paddock.Invalid(ge)
		metrics.FeaturesTotal.WithLabelValues(ge.Kind.String()).Inc()
	} else {
		r, err := area.Compute(g)
		if err != nil {
			return paddock.Feature{}, paddock.Outcome{}, fmt.Errorf("compute area: %w", err)
		}
		o = paddock.Valid(g, r)
		if g.Polygonal() {
			metrics.FeaturesTotal.WithLabelValues("valid").Inc()
		} else {
			metrics.FeaturesTotal.WithLabelValues("unsupported").Inc()
		}
		if g.Repaired {
			metrics.RepairedTotal.Inc()
		}
	}
	out, err := normalize.Feature(f, o)
	if err != nil {
		return paddock.Feature{}, paddock.Outcome{}, err
	}
	return out, o, nil
}

// 文档注释：按输入顺序处理整个要素集合并聚合
// 约束：单要素失败不影响其余要素；每次调用使用独立的聚合引擎。
// 异常：任一要素出现缺陷错误时整个批次失败，错误中带要素序号。
func Analyse(fc paddock.FeatureCollection) (*Report, error) {
	l := logger.L()
	eng := aggregate.NewEngine()
	normalized := make([]paddock.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		out, o, err := ProcessFeature(f)
		if err != nil {
			l.Error("feature_defect", "index", i, "err", err)
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if !o.IsValid() {
			l.Debug("feature_invalid", "index", i, "kind", o.Err().Kind.String(), "reason", o.Err().Error())
		} else if g := o.Geometry(); g.Repaired {
			l.Debug("feature_repaired", "index", i, "type", g.Type)
		}
		eng.Add(f.Properties, o)
		normalized = append(normalized, out)
	}
	summary, groups := eng.Finalize()
	l.Info("analyse_done",
		"features", summary.TotalPaddocks,
		"groups", summary.TotalGroups,
		"invalid", summary.InvalidPaddocks,
		"geodesic_m2", summary.Area.GeodesicM2,
	)
	return &Report{
		Summary:    summary,
		Groups:     groups,
		Normalized: paddock.FeatureCollection{Type: "FeatureCollection", Features: normalized},
	}, nil
}
