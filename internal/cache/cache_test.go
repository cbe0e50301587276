package cache_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/unsplash-picker/internal/cache"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func openDisk(t *testing.T, capacity int64, ttl time.Duration, clk *clock) *cache.Disk {
	t.Helper()

	d, err := cache.OpenDisk(
		filepath.Join(t.TempDir(), "cache", "responses.db"),
		capacity,
		ttl,
		cache.WithDiskNowFunc(clk.Now),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory(8, time.Hour)

	_, ok := m.Get("missing")
	assert.False(t, ok)

	value := []byte("payload")
	m.Set("k", value)
	value[0] = 'X'

	got, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
}

func TestDisk_GetSetAndExpiry(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	d := openDisk(t, 0, time.Minute, clk)

	require.NoError(t, d.Ping())

	d.Set("page-1", []byte(`{"n":1}`))
	got, ok := d.Get("page-1")
	require.True(t, ok)
	assert.JSONEq(t, `{"n":1}`, string(got))

	clk.now = clk.now.Add(2 * time.Minute)
	_, ok = d.Get("page-1")
	assert.False(t, ok, "expired entries are not returned")

	n, err := d.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, d.Len())
}

func TestDisk_EvictsOldestOverCapacity(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	// Each entry: 2 byte key + 16 byte header + 100 byte payload = 118 bytes.
	d := openDisk(t, 300, time.Hour, clk)

	payload := []byte(strings.Repeat("a", 100))
	for _, k := range []string{"k1", "k2", "k3"} {
		d.Set(k, payload)
		clk.now = clk.now.Add(time.Second)
	}

	_, ok := d.Get("k1")
	assert.False(t, ok, "oldest entry evicted")
	_, ok = d.Get("k2")
	assert.True(t, ok)
	_, ok = d.Get("k3")
	assert.True(t, ok)
}

func TestDisk_SkipsValueLargerThanCapacity(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Now()}
	d := openDisk(t, 64, time.Hour, clk)

	d.Set("big", []byte(strings.Repeat("b", 128)))
	_, ok := d.Get("big")
	assert.False(t, ok)
}

func TestTiered_PromotesDiskHits(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Now()}
	disk := openDisk(t, 0, time.Hour, clk)
	mem := cache.NewMemory(4, time.Hour)

	disk.Set("k", []byte("v"))

	tiered := cache.NewTiered(mem, disk)
	got, ok := tiered.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	promoted, ok := mem.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), promoted)

	tiered.Set("k2", []byte("v2"))
	_, ok = disk.Get("k2")
	assert.True(t, ok)

	_, ok = tiered.Get("absent")
	assert.False(t, ok)
}

func TestTiered_NilTiers(t *testing.T) {
	t.Parallel()

	tiered := cache.NewTiered(nil, nil)
	tiered.Set("k", []byte("v"))
	_, ok := tiered.Get("k")
	assert.False(t, ok)
}

type fakePurger struct {
	calls int
	n     int
	err   error
}

func (f *fakePurger) PurgeExpired() (int, error) {
	f.calls++
	return f.n, f.err
}

func TestJanitor(t *testing.T) {
	t.Parallel()

	p := &fakePurger{n: 3}
	j, err := cache.NewJanitor(p, 10*time.Minute, logger.Discard())
	require.NoError(t, err)
	assert.Len(t, j.Entries(), 1)

	j.RunOnce()
	assert.Equal(t, 1, p.calls)

	p.err = errors.New("disk full")
	j.RunOnce()
	assert.Equal(t, 2, p.calls)

	j.Start()
	<-j.Stop().Done()
}
