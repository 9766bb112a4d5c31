package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"paddock-api/internal/metrics"
)

// 文档注释：进程内 LRU 缓存
// 背景：未启用 Redis 时同一文件的重复上传直接复用报表；TTL 与容量可调。
// 约束：并发安全；超过容量时淘汰最久未使用的项，过期项在读取时清理。
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type entry struct {
	k   string
	v   []byte
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(_ context.Context, k string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(entry)
		if c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			metrics.ReportCacheHitsTotal.WithLabelValues("lru").Inc()
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	metrics.ReportCacheMissesTotal.WithLabelValues("lru").Inc()
	return nil, false
}

func (c *LRU) Set(_ context.Context, k string, v []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

// Len 当前条目数（含尚未清理的过期项）
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
