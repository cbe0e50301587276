package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/donaldgifford/unsplash-picker/internal/metrics"
	"github.com/donaldgifford/unsplash-picker/pkg/logger"
)

var bucketResponses = []byte("responses")

// entry layout: [created unix nanos][expires unix nanos][payload]
const headerSize = 16

// Disk is a bbolt-backed cache bounded by a byte budget. When the budget is
// exceeded the oldest entries are evicted first.
type Disk struct {
	db       *bolt.DB
	capacity int64
	ttl      time.Duration
	log      *slog.Logger
	nowFunc  func() time.Time
}

// DiskOption configures the Disk cache.
type DiskOption func(*Disk)

// WithDiskNowFunc overrides the time function for testing.
func WithDiskNowFunc(f func() time.Time) DiskOption {
	return func(d *Disk) {
		d.nowFunc = f
	}
}

// WithDiskLogger sets the logger.
func WithDiskLogger(l *slog.Logger) DiskOption {
	return func(d *Disk) {
		d.log = l
	}
}

// OpenDisk opens (or creates) the cache database at path.
func OpenDisk(path string, capacity int64, ttl time.Duration, opts ...DiskOption) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResponses)
		return err
	})
	if err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}

	d := &Disk{
		db:       db,
		capacity: capacity,
		ttl:      ttl,
		log:      logger.Discard(),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Close closes the underlying database.
func (d *Disk) Close() error {
	return d.db.Close()
}

// Ping reports whether the database is usable.
func (d *Disk) Ping() error {
	return d.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketResponses) == nil {
			return errors.New("cache bucket missing")
		}
		return nil
	})
}

// Get returns the value stored under key if it has not expired.
func (d *Disk) Get(key string) ([]byte, bool) {
	now := d.nowFunc().UnixNano()

	var out []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketResponses).Get([]byte(key))
		if len(v) < headerSize {
			return nil
		}
		if int64(binary.BigEndian.Uint64(v[8:16])) <= now { //nolint:gosec // timestamps fit in int64
			return nil
		}
		out = make([]byte, len(v)-headerSize)
		copy(out, v[headerSize:])
		return nil
	})
	if err != nil {
		d.log.Warn("disk cache read failed", "key", key, "error", err)
		return nil, false
	}
	return out, out != nil
}

// Set stores value under key, evicting the oldest entries if the byte
// budget is exceeded. Values larger than the whole budget are not stored.
func (d *Disk) Set(key string, value []byte) {
	size := int64(len(key) + headerSize + len(value))
	if d.capacity > 0 && size > d.capacity {
		return
	}

	now := d.nowFunc()
	buf := make([]byte, headerSize+len(value))
	binary.BigEndian.PutUint64(buf[0:8], uint64(now.UnixNano()))          //nolint:gosec // positive
	binary.BigEndian.PutUint64(buf[8:16], uint64(now.Add(d.ttl).UnixNano())) //nolint:gosec // positive
	copy(buf[headerSize:], value)

	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResponses)
		if err := b.Put([]byte(key), buf); err != nil {
			return err
		}
		if d.capacity <= 0 {
			return nil
		}
		return d.evictLocked(b, key)
	})
	if err != nil {
		d.log.Warn("disk cache write failed", "key", key, "error", err)
	}
}

type diskEntry struct {
	key     []byte
	created int64
	size    int64
}

func (d *Disk) evictLocked(b *bolt.Bucket, keep string) error {
	var (
		total   int64
		entries []diskEntry
	)
	err := b.ForEach(func(k, v []byte) error {
		size := int64(len(k) + len(v))
		total += size
		if string(k) == keep || len(v) < headerSize {
			return nil
		}
		entries = append(entries, diskEntry{
			key:     append([]byte(nil), k...),
			created: int64(binary.BigEndian.Uint64(v[0:8])), //nolint:gosec // timestamps fit in int64
			size:    size,
		})
		return nil
	})
	if err != nil {
		return err
	}
	if total <= d.capacity {
		return nil
	}

	slices.SortFunc(entries, func(a, b diskEntry) int {
		switch {
		case a.created < b.created:
			return -1
		case a.created > b.created:
			return 1
		default:
			return 0
		}
	})

	for _, e := range entries {
		if total <= d.capacity {
			break
		}
		if err := b.Delete(e.key); err != nil {
			return err
		}
		total -= e.size
		metrics.CacheEvictionsTotal.WithLabelValues("capacity").Inc()
	}
	return nil
}

// PurgeExpired deletes every expired entry and returns how many were removed.
func (d *Disk) PurgeExpired() (int, error) {
	now := d.nowFunc().UnixNano()
	removed := 0

	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResponses)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if len(v) < headerSize || int64(binary.BigEndian.Uint64(v[8:16])) <= now { //nolint:gosec // timestamps fit in int64
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purging expired entries: %w", err)
	}

	metrics.CacheEvictionsTotal.WithLabelValues("expired").Add(float64(removed))
	return removed, nil
}

// Len returns the number of stored entries, expired ones included.
func (d *Disk) Len() int {
	n := 0
	_ = d.db.View(func(tx *bolt.Tx) error { //nolint:errcheck // read-only stat
		n = tx.Bucket(bucketResponses).Stats().KeyN
		return nil
	})
	return n
}
