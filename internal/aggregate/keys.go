package aggregate

import (
	"fmt"
	"strings"
)

// 按优先级探测的属性键（大小写敏感）
var (
	OwnerKeys   = []string{"owner", "Owner", "OWNER"}
	ProjectKeys = []string{"Project__Name", "project_name", "project"}
	NameKeys    = []string{"name"}
)

const (
	DefaultOwner = "Unknown"
	DefaultName  = "Unnamed"
)

var infrastructureMarkers = []string{"shed", "house", "building"}

// 文档注释：按 keys 顺序取第一个存在、非 null、去空白后非空的属性值
// 约束：非字符串值用 fmt.Sprint 转成文本；全部缺失时返回 ("", false)。
func Lookup(props map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := props[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		default:
			s = fmt.Sprint(t)
		}
		s = strings.TrimSpace(s)
		if s != "" {
			return s, true
		}
	}
	return "", false
}

func lookupOr(props map[string]any, keys []string, def string) string {
	if s, ok := Lookup(props, keys); ok {
		return s
	}
	return def
}

// IsInfrastructure 名称含 shed/house/building（不区分大小写）视为建筑类地块
func IsInfrastructure(name string) bool {
	n := strings.ToLower(name)
	for _, m := range infrastructureMarkers {
		if strings.Contains(n, m) {
			return true
		}
	}
	return false
}
