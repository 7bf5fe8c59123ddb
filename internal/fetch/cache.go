package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
)

const (
	bodyFile = "body"
	metaFile = "meta.json"
)

// cacheMeta holds the validators and content type of a cached page.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// cachedPage is the last good copy of one URL. A zero value means nothing
// is cached.
type cachedPage struct {
	meta cacheMeta
	body []byte
}

func (p cachedPage) ok() bool { return len(p.body) > 0 }

// pageCache stores one directory per URL under root, named by a hash of the
// URL.
type pageCache struct {
	root string
}

func (c pageCache) dir(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.root, hex.EncodeToString(sum[:8]))
}

// load returns whatever is cached for url. Missing or unreadable entries
// yield a zero cachedPage.
func (c pageCache) load(url string) cachedPage {
	dir := c.dir(url)
	body, err := os.ReadFile(filepath.Join(dir, bodyFile))
	if err != nil {
		return cachedPage{}
	}
	var meta cacheMeta
	if data, err := os.ReadFile(filepath.Join(dir, metaFile)); err == nil {
		_ = json.Unmarshal(data, &meta)
	}
	return cachedPage{meta: meta, body: body}
}

// store writes body before meta so meta never describes a missing body.
func (c pageCache) store(p cachedPage) error {
	dir := c.dir(p.meta.URL)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return eris.Wrap(err, "fetch: create cache dir")
	}
	if err := os.WriteFile(filepath.Join(dir, bodyFile), p.body, 0o600); err != nil {
		return eris.Wrap(err, "fetch: write cached body")
	}

	p.meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&p.meta, "", "  ")
	if err != nil {
		return eris.Wrap(err, "fetch: marshal cache meta")
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), data, 0o600); err != nil {
		return eris.Wrap(err, "fetch: write cache meta")
	}
	return nil
}
