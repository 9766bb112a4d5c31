package geometry

import "fmt"

// ErrorKind：单要素几何阶段的失败分类
type ErrorKind int

const (
	MissingGeometry ErrorKind = iota + 1
	DecodeError
	UnrepairableGeometry
	EmptyGeometry
)

func (k ErrorKind) String() string {
	switch k {
	case MissingGeometry:
		return "missing_geometry"
	case DecodeError:
		return "decode_error"
	case UnrepairableGeometry:
		return "unrepairable_geometry"
	case EmptyGeometry:
		return "empty_geometry"
	default:
		return "unknown"
	}
}

// 文档注释：几何阶段错误
// 约束：Error() 文本直接作为报表备注展示给用户；Detail 保留底层解析或 GEOS 的原因。
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case MissingGeometry:
		return "Missing geometry"
	case DecodeError:
		if e.Detail == "" {
			return "Invalid geometry"
		}
		return "Invalid geometry: " + e.Detail
	case UnrepairableGeometry:
		if e.Detail == "" {
			return "Geometry could not be repaired"
		}
		return "Geometry could not be repaired: " + e.Detail
	case EmptyGeometry:
		return "Geometry is empty after repair"
	default:
		return "Geometry error"
	}
}

// Is 按分类匹配哨兵错误，例如 errors.Is(err, ErrMissingGeometry)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Detail == "" || t.Detail == e.Detail)
}

var (
	ErrMissingGeometry      = &Error{Kind: MissingGeometry}
	ErrDecode               = &Error{Kind: DecodeError}
	ErrUnrepairableGeometry = &Error{Kind: UnrepairableGeometry}
	ErrEmptyGeometry        = &Error{Kind: EmptyGeometry}
)

func decodeErr(format string, args ...any) *Error {
	return &Error{Kind: DecodeError, Detail: fmt.Sprintf(format, args...)}
}
