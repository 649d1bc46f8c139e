package loader_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/genie/internal/genie/loader"
	"github.com/cory-johannsen/genie/internal/genie/reader"
	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

// loaders reads n lazy one-byte records and returns their loaders.
func loaders(t *testing.T, n int) []*reader.DynamicLoader {
	t.Helper()
	item := schema.NewLazy("item", func(version.GameVersion) []schema.Entry {
		return []schema.Entry{{Access: schema.ReadGen, Name: "v", Storage: schema.Int, Read: schema.Raw("uint8_t")}}
	})
	table := schema.New("table", func(version.GameVersion) []schema.Entry {
		return []schema.Entry{{Access: schema.ReadGen, Name: "items", Storage: schema.ArrayContainer, Read: &schema.Subdata{Schema: item, Length: schema.Fixed(n)}}}
	})
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i + 1)
	}
	res, err := reader.New(reader.WithLazy(true)).Read(buf, 0, table, version.New(version.AOC), reader.Internal)
	require.NoError(t, err)
	slots, err := res.Record.Slots("items")
	require.NoError(t, err)
	out := make([]*reader.DynamicLoader, 0, n)
	for _, s := range slots {
		out = append(out, s.Loader)
	}
	return out
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := loader.NewCache(2, reg, zap.NewNop())
	require.NoError(t, err)
	ls := loaders(t, 3)

	for _, l := range ls[:2] {
		_, err := c.Get(l)
		require.NoError(t, err)
	}
	// Touch the first so the second becomes the eviction candidate.
	_, err = c.Get(ls[0])
	require.NoError(t, err)
	_, err = c.Get(ls[2])
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.True(t, ls[0].Loaded())
	assert.False(t, ls[1].Loaded())
	assert.True(t, ls[2].Loaded())

	lm := promMetrics(t, reg)
	assert.Equal(t, 3.0, lm["genie_loader_loads_total"])
	assert.Equal(t, 1.0, lm["genie_loader_hits_total"])
	assert.Equal(t, 1.0, lm["genie_loader_evictions_total"])
	assert.Equal(t, 2.0, lm["genie_loader_resident"])
}

func promMetrics(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, f := range families {
		m := f.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			out[f.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			out[f.GetName()] = m.GetGauge().GetValue()
		}
	}
	return out
}

func TestCache_MemberAndResolve(t *testing.T) {
	c, err := loader.NewCache(4, nil, zap.NewNop())
	require.NoError(t, err)
	ls := loaders(t, 2)

	m, err := c.Member(ls[1], "v")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.(*value.Int).Value)
	assert.True(t, ls[1].Loaded())

	_, err = c.Member(ls[1], "missing")
	assert.ErrorIs(t, err, reader.ErrUnknownField)

	resolved, err := c.Resolve(ls[0])
	require.NoError(t, err)
	assert.Equal(t, value.KindContainer, resolved.Kind())

	plain := value.NewInt("x", 1)
	same, err := c.Resolve(plain)
	require.NoError(t, err)
	assert.Same(t, plain, same)
}

func TestCache_PurgeUnloadsEverything(t *testing.T) {
	c, err := loader.NewCache(4, nil, zap.NewNop())
	require.NoError(t, err)
	ls := loaders(t, 3)
	for _, l := range ls {
		_, err := c.Get(l)
		require.NoError(t, err)
	}
	c.Purge()
	assert.Equal(t, 0, c.Len())
	for _, l := range ls {
		assert.False(t, l.Loaded())
	}
}

func TestCache_MetricsCountOnlyDecodesAndEvictions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := loader.NewCache(4, reg, zap.NewNop())
	require.NoError(t, err)
	ls := loaders(t, 2)

	require.NoError(t, ls[0].Load())
	_, err = c.Get(ls[0])
	require.NoError(t, err)
	_, err = c.Get(ls[1])
	require.NoError(t, err)
	c.Purge()

	lm := promMetrics(t, reg)
	assert.Equal(t, 1.0, lm["genie_loader_loads_total"])
	assert.Equal(t, 0.0, lm["genie_loader_evictions_total"])
	assert.Equal(t, 0.0, lm["genie_loader_resident"])
	assert.False(t, ls[0].Loaded())
	assert.False(t, ls[1].Loaded())
}

func TestCache_ReloadAfterEvictionIsDeepEqual(t *testing.T) {
	c, err := loader.NewCache(1, nil, zap.NewNop())
	require.NoError(t, err)
	ls := loaders(t, 2)

	first, err := c.Get(ls[0])
	require.NoError(t, err)
	_, err = c.Get(ls[1])
	require.NoError(t, err)
	require.False(t, ls[0].Loaded())

	again, err := c.Get(ls[0])
	require.NoError(t, err)
	assert.True(t, value.Equal(first, again))
}

func TestNewCache_RejectsNonPositiveSize(t *testing.T) {
	_, err := loader.NewCache(0, nil, zap.NewNop())
	require.Error(t, err)
}
