// Package cover keeps local copies of subscription cover images.
package cover

import (
	"context"
	"crypto/md5"
	_ "embed"
	"encoding/hex"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/pders01/anirss/internal/debuglog"
)

// Placeholder is returned whenever no real cover is available.
const Placeholder = "cover.png"

const fetchTimeout = 30 * time.Second

//go:embed cover.png
var placeholderPNG []byte

// Opener streams a remote body. feed.Fetcher satisfies it.
type Opener interface {
	Open(ctx context.Context, rawURL string, timeout time.Duration) (io.ReadCloser, error)
}

// Cache stores covers under dir, sharded by the first hex digit of the md5
// of their URL.
type Cache struct {
	dir    string
	opener Opener
	group  singleflight.Group
}

func New(dir string, opener Opener) *Cache {
	return &Cache{dir: dir, opener: opener}
}

// Path returns the absolute location of a name returned by Save.
func (c *Cache) Path(rel string) string {
	return filepath.Join(c.dir, filepath.FromSlash(rel))
}

// Name is the cache-relative file name for coverURL.
func Name(coverURL string) string {
	sum := md5.Sum([]byte(coverURL))
	digest := hex.EncodeToString(sum[:])
	name := digest[:1] + "/" + digest
	if ext := extension(coverURL); ext != "" {
		name += "." + ext
	}
	return name
}

func extension(coverURL string) string {
	p := coverURL
	if u, err := url.Parse(coverURL); err == nil {
		p = u.Path
	}
	return strings.TrimPrefix(path.Ext(p), ".")
}

// Save makes sure coverURL is on disk and returns its cache-relative name.
// An existing file is reused unless overwrite is set. A blank URL or any
// failure yields Placeholder; Save never returns an error.
func (c *Cache) Save(ctx context.Context, coverURL string, overwrite bool) string {
	if err := c.ensurePlaceholder(); err != nil {
		debuglog.Errorf("cover placeholder: %v", err)
	}

	coverURL = strings.TrimSpace(coverURL)
	if coverURL == "" {
		return Placeholder
	}

	name := Name(coverURL)
	target := c.Path(name)
	if !overwrite && exists(target) {
		return name
	}

	key := name
	if overwrite {
		key += "|overwrite"
	}
	v, _, _ := c.group.Do(key, func() (any, error) {
		if !overwrite && exists(target) {
			return name, nil
		}
		if err := c.fetch(ctx, coverURL, target); err != nil {
			debuglog.WithFields(map[string]any{
				"component": "cover",
				"url":       coverURL,
			}).Errorf("saving cover: %v", err)
			return Placeholder, nil
		}
		debuglog.Debugf("saved cover %s -> %s", coverURL, name)
		return name, nil
	})
	return v.(string)
}

func (c *Cache) fetch(ctx context.Context, coverURL, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, "creating shard")
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing stale cover")
	}

	body, err := c.opener.Open(ctx, coverURL, fetchTimeout)
	if err != nil {
		return err
	}
	defer body.Close()

	// Readers only ever see a complete file at target.
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*.part")
	if err != nil {
		return errors.Wrap(err, "creating cover file")
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = io.Copy(f, body); err != nil {
		f.Close()
		return errors.Wrap(err, "writing cover")
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing cover file")
	}
	if err = os.Rename(tmp, target); err != nil {
		return errors.Wrap(err, "renaming cover file")
	}
	return nil
}

func (c *Cache) ensurePlaceholder() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errors.Wrap(err, "creating cover directory")
	}
	p := filepath.Join(c.dir, Placeholder)
	if exists(p) {
		return nil
	}
	return os.WriteFile(p, placeholderPNG, 0o644)
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
