package storage

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	BangumiBucket = []byte("bangumi")
	TMDBBucket    = []byte("tmdb")
)

// Cache keeps provider lookups (Bangumi subjects, TMDB matches) in a bbolt
// file so repeated resolutions of the same show stay offline.
type Cache struct {
	db  *bolt.DB
	now func() time.Time
}

type cacheEntry struct {
	CachedAt time.Time       `json:"cached_at"`
	Value    json.RawMessage `json:"value"`
}

func NewCache(dbPath string) (*Cache, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening cache database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{BangumiBucket, TMDBBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating buckets")
	}

	return &Cache{db: db, now: time.Now}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores v under key, stamped with the current time.
func (c *Cache) Put(bucket []byte, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding cache value")
	}
	data, err := json.Marshal(cacheEntry{CachedAt: c.now(), Value: value})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return errors.Errorf("unknown cache bucket %q", bucket)
		}
		return b.Put([]byte(key), data)
	})
}

// Get decodes the entry under key into out. It reports false when the entry
// is missing, undecodable, or older than maxAge (maxAge <= 0 never expires).
func (c *Cache) Get(bucket []byte, key string, maxAge time.Duration, out any) bool {
	var data []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if data == nil {
		return false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}
	if maxAge > 0 && c.now().Sub(entry.CachedAt) > maxAge {
		return false
	}
	return json.Unmarshal(entry.Value, out) == nil
}

