// Package loader bounds how many lazily read records stay resident at once.
package loader

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/cory-johannsen/genie/internal/genie/reader"
	"github.com/cory-johannsen/genie/internal/genie/value"
)

// metrics holds the cache's Prometheus collectors.
type metrics struct {
	loads     prometheus.Counter
	hits      prometheus.Counter
	evictions prometheus.Counter
	resident  prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		loads: f.NewCounter(prometheus.CounterOpts{
			Name: "genie_loader_loads_total",
			Help: "Total number of deferred records decoded into the cache",
		}),
		hits: f.NewCounter(prometheus.CounterOpts{
			Name: "genie_loader_hits_total",
			Help: "Total number of lookups served by a resident record",
		}),
		evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "genie_loader_evictions_total",
			Help: "Total number of resident records unloaded to make room",
		}),
		resident: f.NewGauge(prometheus.GaugeOpts{
			Name: "genie_loader_resident",
			Help: "Number of deferred records currently resident",
		}),
	}
}

// Cache keeps at most a fixed number of DynamicLoaders loaded. The least
// recently used loader is unloaded when a new one is admitted.
type Cache struct {
	entries *lru.Cache[*reader.DynamicLoader, struct{}]
	metrics *metrics
	logger  *zap.Logger
	purging bool
}

// NewCache returns a Cache holding up to size resident records. Metrics are
// registered with reg; a nil reg leaves them unregistered.
//
// Precondition: size > 0; logger must not be nil.
// Postcondition: Returns a non-nil *Cache or a non-nil error.
func NewCache(size int, reg prometheus.Registerer, logger *zap.Logger) (*Cache, error) {
	c := &Cache{metrics: newMetrics(reg), logger: logger}
	entries, err := lru.NewWithEvict(size, func(l *reader.DynamicLoader, _ struct{}) {
		l.Unload()
		if c.purging {
			return
		}
		c.metrics.evictions.Inc()
		c.logger.Debug("evicted deferred record",
			zap.String("schema", l.Schema().Name),
			zap.String("name", l.Name()),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("creating loader cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// Get returns l's tree, loading it and admitting it to the cache if needed.
func (c *Cache) Get(l *reader.DynamicLoader) (*value.Container, error) {
	if _, ok := c.entries.Get(l); ok {
		if tree, ok := l.Tree(); ok {
			c.metrics.hits.Inc()
			return tree, nil
		}
	}
	if !l.Loaded() {
		if err := l.Load(); err != nil {
			return nil, fmt.Errorf("loading %s %s: %w", l.Schema().Name, l.Name(), err)
		}
		c.metrics.loads.Inc()
	}
	c.entries.Add(l, struct{}{})
	c.metrics.resident.Set(float64(c.entries.Len()))
	tree, _ := l.Tree()
	return tree, nil
}

// Resolve returns m, or the cached tree when m is a DynamicLoader.
func (c *Cache) Resolve(m value.Member) (value.Member, error) {
	l, ok := m.(*reader.DynamicLoader)
	if !ok {
		return m, nil
	}
	return c.Get(l)
}

// Member returns one member of l's record through the cache.
func (c *Cache) Member(l *reader.DynamicLoader, name string) (value.Member, error) {
	tree, err := c.Get(l)
	if err != nil {
		return nil, err
	}
	m, ok := tree.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w: %q", l.Schema().Name, l.Name(), reader.ErrUnknownField, name)
	}
	return m, nil
}

// Len returns the number of resident records.
func (c *Cache) Len() int { return c.entries.Len() }

// Purge unloads every resident record. Purged records are not counted as
// evictions.
func (c *Cache) Purge() {
	c.purging = true
	c.entries.Purge()
	c.purging = false
	c.metrics.resident.Set(0)
}
