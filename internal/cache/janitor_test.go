package cache_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/unsplash-picker/internal/cache"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
)

type stubPurger struct {
	n     int
	err   error
	calls int
}

func (s *stubPurger) PurgeExpired() (int, error) {
	s.calls++
	return s.n, s.err
}

func TestNewJanitor_RegistersEntry(t *testing.T) {
	t.Parallel()

	j, err := cache.NewJanitor(&stubPurger{}, 15*time.Minute, logger.Discard())
	require.NoError(t, err)
	assert.Len(t, j.Entries(), 1)
}

func TestJanitor_RunOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		purger  *stubPurger
		wantLog string
	}{
		{
			name:    "entries purged",
			purger:  &stubPurger{n: 3},
			wantLog: "purged expired cache entries",
		},
		{
			name:    "nothing expired",
			purger:  &stubPurger{},
			wantLog: "",
		},
		{
			name:    "purge error",
			purger:  &stubPurger{err: errors.New("disk full")},
			wantLog: "cache purge failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			j, err := cache.NewJanitor(tt.purger, time.Hour, logger.NewWithWriter(&buf, "info", "text"))
			require.NoError(t, err)

			j.RunOnce()

			assert.Equal(t, 1, tt.purger.calls)
			if tt.wantLog == "" {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.wantLog)
			}
		})
	}
}

func TestJanitor_PurgesDisk(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	d := openDisk(t, 1<<20, time.Minute, clk)
	d.Set("a", []byte("payload"))

	clk.now = clk.now.Add(2 * time.Minute)

	j, err := cache.NewJanitor(d, time.Hour, logger.Discard())
	require.NoError(t, err)
	j.RunOnce()

	assert.Equal(t, 0, d.Len())
}
