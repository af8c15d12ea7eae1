package service

import (
	"sync"

	"github.com/petcare/rfid-gateway/internal/model"
)

// LastReadCache holds the outcome of the most recent read event so that
// clients without a broker connection can poll for it.
type LastReadCache struct {
	mu   sync.RWMutex
	last *model.LastTagRead
}

func NewLastReadCache() *LastReadCache {
	return &LastReadCache{}
}

func (c *LastReadCache) Set(read model.LastTagRead) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &read
}

// Get returns a copy of the last read, or false if nothing was read yet.
func (c *LastReadCache) Get() (*model.LastTagRead, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.last == nil {
		return nil, false
	}
	read := *c.last
	return &read, true
}
