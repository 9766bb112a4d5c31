package analyser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"paddock-api/internal/logger"
	"paddock-api/internal/paddock"
)

var (
	ErrInvalidJSON          = errors.New("invalid json")
	ErrNotFeatureCollection = errors.New("expected a GeoJSON FeatureCollection")
)

// SyntaxError：文档在严格解析与宽松解析后都无法解码
type SyntaxError struct {
	Detail string
}

func (e *SyntaxError) Error() string { return "invalid json: " + e.Detail }

func (e *SyntaxError) Is(target error) bool { return target == ErrInvalidJSON }

const collectionSchema = `{
  "type": "object",
  "required": ["type", "features"],
  "properties": {
    "type": {"const": "FeatureCollection"},
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "properties": {"type": ["object", "null"]}
        }
      }
    }
  }
}`

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("feature_collection.json", strings.NewReader(collectionSchema)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	return c.MustCompile("feature_collection.json")
}

// 文档注释：解码上传的 FeatureCollection
// 背景：现场导出的文件常带 BOM、尾随逗号或 NUL 填充，严格解析失败后清洗一次再试。
// 约束：顶层必须是 type=FeatureCollection 且 features 为对象数组；要素级几何问题不在此处处理。
// 异常：无法解码 → *SyntaxError（errors.Is ErrInvalidJSON）；结构不符 → ErrNotFeatureCollection。
func DecodeCollection(b []byte) (paddock.FeatureCollection, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		cleaned := sanitize(b)
		if err2 := json.Unmarshal(cleaned, &doc); err2 != nil {
			return paddock.FeatureCollection{}, &SyntaxError{Detail: err.Error()}
		}
		logger.L().Debug("collection_decode_fallback", "strict_error", err.Error(), "bytes", len(b))
		b = cleaned
	}
	if err := schema.Validate(doc); err != nil {
		logger.L().Debug("collection_schema_reject", "err", err.Error())
		return paddock.FeatureCollection{}, ErrNotFeatureCollection
	}
	var fc paddock.FeatureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return paddock.FeatureCollection{}, fmt.Errorf("%w: %v", ErrNotFeatureCollection, err)
	}
	return fc, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sanitize 去掉 BOM 与 NUL，删除字符串外位于 ] 或 } 之前的逗号
func sanitize(b []byte) []byte {
	b = bytes.TrimPrefix(b, utf8BOM)
	out := make([]byte, 0, len(b))
	inString, escaped := false, false
	pendingComma := -1
	for _, c := range b {
		if c == 0 {
			continue
		}
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			pendingComma = -1
		case ',':
			pendingComma = len(out)
		case ']', '}':
			if pendingComma >= 0 {
				out = append(out[:pendingComma], out[pendingComma+1:]...)
				pendingComma = -1
			}
		case ' ', '\t', '\r', '\n':
		default:
			pendingComma = -1
		}
		out = append(out, c)
	}
	return out
}
