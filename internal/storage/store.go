package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/debuglog"
)

// Store owns the subscription list and its JSON document on disk. The whole
// list is the unit of persistence.
type Store struct {
	path string

	mu   sync.RWMutex
	subs []*Subscription

	// syncMu serializes Sync within the process, lock across processes.
	syncMu sync.Mutex
	lock   *flock.Flock

	// rename is swapped in tests to simulate a crash before the rename.
	rename func(oldpath, newpath string) error
}

// SyncResult reports the outcome of a Sync. A failed sync is logged and
// tolerated; the in-memory list stays authoritative.
type SyncResult struct {
	Path  string
	Count int
	Err   error
}

// OK reports whether the document on disk now matches memory.
func (r SyncResult) OK() bool {
	return r.Err == nil
}

// Open creates a store backed by path and loads it.
func Open(path string) (*Store, error) {
	s := NewStore(path)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStore creates an empty store without touching the disk.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		rename: os.Rename,
	}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) tempPath() string {
	return s.path + ".temp"
}

// Load reads the document, creating an empty one when absent, and replaces
// the in-memory list with the decoded and migrated records.
func (s *Store) Load() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if writeErr := os.WriteFile(s.path, []byte("[]"), 0o644); writeErr != nil {
			return errors.Wrapf(writeErr, "creating %s", s.path)
		}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", s.path)
	}

	var raws []*rawSubscription
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &raws); err != nil {
			return errors.Wrapf(err, "decoding %s", s.path)
		}
	}

	subs := make([]*Subscription, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		subs = append(subs, decodeRecord(raw))
	}

	s.mu.Lock()
	s.subs = subs
	s.mu.Unlock()

	debuglog.Debugf("loaded %d subscriptions from %s", len(subs), s.path)
	return nil
}

// Sync writes the list to disk through a temp file and an atomic rename, so
// the document is always either the previous or the new complete version.
func (s *Store) Sync() SyncResult {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.RLock()
	data, err := json.MarshalIndent(s.subs, "", "  ")
	count := len(s.subs)
	s.mu.RUnlock()

	result := SyncResult{Path: s.path, Count: count}
	if err == nil && count == 0 {
		data = []byte("[]")
	}
	if err != nil {
		result.Err = errors.Wrap(err, "encoding subscriptions")
	} else {
		result.Err = s.writeAtomic(data)
	}

	if result.Err != nil {
		debuglog.WithFields(map[string]interface{}{
			"path":  s.path,
			"count": count,
		}).Errorf("saving subscriptions failed: %v", result.Err)
		return result
	}

	debuglog.Debugf("saved %d subscriptions to %s", count, s.path)
	return result
}

func (s *Store) writeAtomic(data []byte) error {
	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(err, "acquiring store lock")
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			debuglog.Warnf("releasing store lock: %v", err)
		}
	}()

	temp := s.tempPath()
	if err := os.Remove(temp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing stale temp file")
	}

	f, err := os.OpenFile(temp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "flushing temp file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := s.rename(temp, s.path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

// All returns a snapshot of the list. The records themselves are shared.
func (s *Store) All() []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Subscription(nil), s.subs...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Add appends sub. It does not persist; call Sync afterwards.
func (s *Store) Add(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
}

// Find returns the subscription whose URL matches rawURL after trimming.
func (s *Store) Find(rawURL string) (*Subscription, bool) {
	rawURL = strings.TrimSpace(rawURL)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.URL == rawURL {
			return sub, true
		}
	}
	return nil, false
}

// Replace swaps in sub for the record with the same URL.
func (s *Store) Replace(sub *Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subs {
		if existing.URL == sub.URL {
			s.subs[i] = sub
			return true
		}
	}
	return false
}

// Remove deletes the subscription with the given URL.
func (s *Store) Remove(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.URL == rawURL {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return true
		}
	}
	return false
}
