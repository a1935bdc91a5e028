package lsp

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/r9s-ai/gofumpt-plugin/internal/plugin"
)

const defaultCacheSize = 256

// formatCache memoises successful format results keyed by configuration
// and input text.
type formatCache struct {
	entries *lru.Cache[string, string]
}

func newFormatCache(size int) (*formatCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &formatCache{entries: entries}, nil
}

func cacheKey(cfg *plugin.Configuration, text string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, cfg.Engine().Fingerprint())
	_, _ = h.Write([]byte{0})
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

// format returns the cached result for (cfg, text) or computes it with
// fn. Failures are not cached.
func (c *formatCache) format(cfg *plugin.Configuration, text string, fn func() (string, error)) (string, error) {
	key := cacheKey(cfg, text)
	if out, ok := c.entries.Get(key); ok {
		return out, nil
	}
	out, err := fn()
	if err != nil {
		return "", err
	}
	c.entries.Add(key, out)
	return out, nil
}
