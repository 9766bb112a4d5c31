// 包 aggregate：按 (owner, project) 聚合地块结果，输出分组汇总与批次总计
package aggregate

import (
	"sort"

	"paddock-api/internal/area"
	"paddock-api/internal/paddock"
)

const (
	// InvalidBucket 每个 owner 下保留的无效地块分组名
	InvalidBucket = "Invalid Paddocks"
	// NoProjectNote 未能取得项目名时的备注
	NoProjectNote = "No project assigned"
)

// GroupKey 聚合键
type GroupKey struct {
	Owner   string
	Project string
}

// 文档注释：分组内的单个地块行
// 约束：Area 仅在几何有效时非 nil（包括未分配项目但几何有效的行）；Note 仅在路由到无效分组时非空。
type PaddockDetail struct {
	Name           string
	Infrastructure bool
	Area           *area.Result
	Note           string
}

// 文档注释：单个分组的汇总（全精度，不做舍入）
// 约束：Area 的差值字段在 Finalize 时由平面/测地和推导；Paddocks 保持输入顺序。
type GroupSummary struct {
	Owner               string
	Project             string
	PaddockCount        int
	ValidCount          int
	InvalidCount        int
	InfrastructureCount int
	Area                area.Result
	Paddocks            []PaddockDetail
}

// 文档注释：批次总计
// 约束：TotalPaddocks 等于各组 PaddockCount 之和；Area.GeodesicM2 等于各组测地面积之和。
type BatchSummary struct {
	TotalGroups            int
	TotalPaddocks          int
	ValidPaddocks          int
	InvalidPaddocks        int
	InfrastructurePaddocks int
	Area                   area.Result
}

// accumulator 单个分组的累加状态；零值即初始状态
type accumulator struct {
	key        GroupKey
	count      int
	valid      int
	invalid    int
	infra      int
	planarM2   float64
	geodesicM2 float64
	rows       []PaddockDetail
}

func newAccumulator(key GroupKey) *accumulator {
	return &accumulator{key: key}
}

// 文档注释：聚合引擎
// 背景：一次批处理一个 Engine；Add 按输入顺序调用，Finalize 之后不应继续使用。
// 约束：非并发安全；结果只取决于 Add 的调用顺序。
type Engine struct {
	groups map[GroupKey]*accumulator

	total      int
	valid      int
	invalid    int
	infra      int
	planarM2   float64
	geodesicM2 float64
}

func NewEngine() *Engine {
	return &Engine{groups: make(map[GroupKey]*accumulator)}
}

func (e *Engine) group(key GroupKey) *accumulator {
	acc, ok := e.groups[key]
	if !ok {
		acc = newAccumulator(key)
		e.groups[key] = acc
	}
	return acc
}

// 文档注释：折叠一个要素的属性与几何结果
// 约束：无项目优先路由到 (owner, Invalid Paddocks) 并备注 "No project assigned"；
// 几何失败路由到同一分组，备注为错误文本（有项目时追加 " (project: X)"）。
// 几何有效时面积总是计入分组与批次，不论是否被路由到无效分组。
func (e *Engine) Add(props map[string]any, o paddock.Outcome) {
	owner := lookupOr(props, OwnerKeys, DefaultOwner)
	project, hasProject := Lookup(props, ProjectKeys)
	name := lookupOr(props, NameKeys, DefaultName)
	infra := IsInfrastructure(name)

	row := PaddockDetail{Name: name, Infrastructure: infra}
	key := GroupKey{Owner: owner, Project: project}
	routedInvalid := false
	switch {
	case !hasProject:
		key.Project = InvalidBucket
		row.Note = NoProjectNote
		routedInvalid = true
	case !o.IsValid():
		key.Project = InvalidBucket
		row.Note = o.Err().Error() + " (project: " + project + ")"
		routedInvalid = true
	}

	acc := e.group(key)
	acc.count++
	e.total++
	if routedInvalid {
		acc.invalid++
		e.invalid++
	} else if !infra {
		acc.valid++
		e.valid++
	}
	if infra {
		acc.infra++
		e.infra++
	}
	if r, ok := o.Area(); ok {
		row.Area = &r
		acc.planarM2 += r.PlanarM2
		acc.geodesicM2 += r.GeodesicM2
		e.planarM2 += r.PlanarM2
		e.geodesicM2 += r.GeodesicM2
	}
	acc.rows = append(acc.rows, row)
}

// 文档注释：生成批次总计与按 (owner, project) 字典序排列的分组汇总
func (e *Engine) Finalize() (BatchSummary, []GroupSummary) {
	groups := make([]GroupSummary, 0, len(e.groups))
	for _, acc := range e.groups {
		groups = append(groups, GroupSummary{
			Owner:               acc.key.Owner,
			Project:             acc.key.Project,
			PaddockCount:        acc.count,
			ValidCount:          acc.valid,
			InvalidCount:        acc.invalid,
			InfrastructureCount: acc.infra,
			Area:                area.NewResult(acc.planarM2, acc.geodesicM2),
			Paddocks:            acc.rows,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Owner != groups[j].Owner {
			return groups[i].Owner < groups[j].Owner
		}
		return groups[i].Project < groups[j].Project
	})
	batch := BatchSummary{
		TotalGroups:            len(groups),
		TotalPaddocks:          e.total,
		ValidPaddocks:          e.valid,
		InvalidPaddocks:        e.invalid,
		InfrastructurePaddocks: e.infra,
		Area:                   area.NewResult(e.planarM2, e.geodesicM2),
	}
	return batch, groups
}

// Entry 一次性聚合的输入项
type Entry struct {
	Properties map[string]any
	Outcome    paddock.Outcome
}

// Aggregate 按顺序折叠全部输入并返回汇总
func Aggregate(entries []Entry) (BatchSummary, []GroupSummary) {
	e := NewEngine()
	for _, en := range entries {
		e.Add(en.Properties, en.Outcome)
	}
	return e.Finalize()
}
