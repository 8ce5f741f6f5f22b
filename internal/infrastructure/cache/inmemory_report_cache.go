package cache

import (
	"context"
	"sync"
	"time"

	appmrp "github.com/emstack/backend/internal/application/mrp"
	"github.com/emstack/backend/internal/domain/mrp"
)

// InMemoryReportCache is a single-process report cache. Suitable for
// development and tests; distributed deployments should use RedisReportCache.
type InMemoryReportCache struct {
	mu        sync.RWMutex
	report    *mrp.Report
	expiresAt time.Time
}

// NewInMemoryReportCache creates a new InMemoryReportCache
func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{}
}

// Get returns the cached report, or nil when absent or expired
func (c *InMemoryReportCache) Get(_ context.Context) (*mrp.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.report == nil || time.Now().After(c.expiresAt) {
		return nil, nil
	}
	return c.report, nil
}

// Set stores a report for the given duration
func (c *InMemoryReportCache) Set(_ context.Context, report *mrp.Report, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report = report
	c.expiresAt = time.Now().Add(ttl)
	return nil
}

// Invalidate drops the cached report
func (c *InMemoryReportCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report = nil
	return nil
}

var _ appmrp.ReportCache = (*InMemoryReportCache)(nil)
