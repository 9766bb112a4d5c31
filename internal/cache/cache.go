// 包 cache：报表缓存，按上传内容哈希复用已计算的报表；支持 Redis 与进程内 LRU 两种后端
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// 文档注释：报表缓存接口
// 约束：值为序列化后的报表字节；后端故障只影响命中率，不向调用方返回错误。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

// Key 上传内容的缓存键（SHA-256 十六进制）
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
