package playground

import (
	"encoding/hex"
	"sync"

	"github.com/edwingeng/deque"
	"github.com/zeebo/blake3"

	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/parser/ast"
)

// compiled is a program that went through every phase before evaluation.
// root is nil when a diagnostic stopped the pipeline.
type compiled struct {
	root  *ast.Scope
	diags []*diag.Diagnostic
}

// Digest returns the hex blake3 digest of a program's source.
func Digest(src []byte) string {
	h := blake3.New()
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}

// cache holds compiled programs by source digest. Once full, the oldest
// entry is evicted first. A limit of 0 disables caching.
type cache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]*compiled
	order   deque.Deque
}

func newCache(limit int) *cache {
	return &cache{
		limit:   limit,
		entries: make(map[string]*compiled),
		order:   deque.NewDeque(),
	}
}

func (c *cache) get(key string) (*compiled, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	return p, ok
}

func (c *cache) put(key string, p *compiled) {
	if c.limit <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	for len(c.entries) >= c.limit {
		oldest := c.order.PopFront().(string)
		delete(c.entries, oldest)
	}
	c.entries[key] = p
	c.order.PushBack(key)
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
