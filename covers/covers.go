// Package covers proxies catalog poster images, downscaled and cached on disk.
package covers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/djherbis/times"
	"github.com/google/uuid"

	"github.com/aniwatch/aniwatch-server/idhash"
)

const (
	defaultWidth       = 240
	maxWidth           = 1080
	defaultJPEGQuality = 80
)

type Options struct {
	// Cachedir holds re-encoded covers. Empty disables caching.
	Cachedir string
	// Hosts that may be proxied. Empty allows any host.
	Hosts   []string
	Client  *http.Client
	Quality int
}

type Cache struct {
	cachedir string
	hosts    map[string]bool
	client   *http.Client
	quality  int

	fetchMutexMap     map[string]*sync.Mutex
	fetchMutexMapLock sync.Mutex
}

func New(o Options) *Cache {
	c := &Cache{
		cachedir:      o.Cachedir,
		hosts:         make(map[string]bool),
		client:        o.Client,
		quality:       o.Quality,
		fetchMutexMap: make(map[string]*sync.Mutex),
	}
	for _, h := range o.Hosts {
		c.hosts[strings.ToLower(h)] = true
	}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.quality == 0 {
		c.quality = defaultJPEGQuality
	}
	return c
}

// fetchLock returns the per-cover mutex so only one request fetches
// and encodes a given cover at a time.
func (c *Cache) fetchLock(key string) *sync.Mutex {
	c.fetchMutexMapLock.Lock()
	defer c.fetchMutexMapLock.Unlock()
	m, ok := c.fetchMutexMap[key]
	if !ok {
		m = &sync.Mutex{}
		c.fetchMutexMap[key] = m
	}
	return m
}

// ServeCover handles GET /covers?src=<url>&w=<width>.
func (c *Cache) ServeCover(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		http.Error(w, "missing src parameter", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		http.Error(w, "invalid src parameter", http.StatusBadRequest)
		return
	}
	if len(c.hosts) > 0 && !c.hosts[strings.ToLower(u.Hostname())] {
		http.Error(w, "cover source not allowed", http.StatusForbidden)
		return
	}

	width := defaultWidth
	if ws := r.URL.Query().Get("w"); ws != "" {
		n, err := strconv.Atoi(ws)
		if err != nil || n < 1 {
			http.Error(w, "invalid w parameter", http.StatusBadRequest)
			return
		}
		width = min(n, maxWidth)
	}

	key := idhash.Hash(fmt.Sprintf("%s:%d:q=%d", src, width, c.quality))

	lock := c.fetchLock(key)
	lock.Lock()
	defer lock.Unlock()

	if fn := c.cachePath(key); fn != "" {
		if fh, err := os.Open(fn); err == nil {
			defer fh.Close()
			fi, err := fh.Stat()
			if err == nil {
				w.Header().Set("Content-Type", "image/jpeg")
				http.ServeContent(w, r, "cover.jpg", fi.ModTime(), fh)
				return
			}
		}
	}

	fn, err := c.fetchAndStore(r.Context(), src, key, width)
	if err != nil {
		log.Printf("covers: %s: %s", src, err)
		http.Error(w, "failed to fetch cover", http.StatusBadGateway)
		return
	}
	fh, err := os.Open(fn)
	if err != nil {
		http.Error(w, "failed to read cover", http.StatusInternalServerError)
		return
	}
	defer fh.Close()
	fi, err := fh.Stat()
	if err != nil {
		http.Error(w, "failed to read cover", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeContent(w, r, "cover.jpg", fi.ModTime(), fh)
}

func (c *Cache) cachePath(key string) string {
	if c.cachedir == "" {
		return ""
	}
	return filepath.Join(c.cachedir, key+".jpg")
}

// fetchAndStore downloads the source image, downscales it and writes it
// to the cache, returning the cached filename.
func (c *Cache) fetchAndStore(ctx context.Context, src, key string, width int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	fn := c.cachePath(key)
	if fn == "" {
		// Caching disabled, keep the encoded cover in a throwaway dir.
		fn = filepath.Join(os.TempDir(), "aniwatch-cover-"+key+".jpg")
	}
	tmp := fn + "." + uuid.NewString()
	fh, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	err = imaging.Encode(fh, img, imaging.JPEG, imaging.JPEGQuality(c.quality))
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, fn); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return fn, nil
}

// Prune removes cached covers that have not been accessed for maxAge.
func (c *Cache) Prune(maxAge time.Duration) {
	if c.cachedir == "" {
		return
	}
	entries, err := os.ReadDir(c.cachedir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		fn := filepath.Join(c.cachedir, e.Name())
		t, err := times.Stat(fn)
		if err != nil {
			continue
		}
		if t.AccessTime().Before(cutoff) {
			os.Remove(fn)
		}
	}
}

// Background prunes the cover cache once an hour until ctx is done.
func (c *Cache) Background(ctx context.Context, maxAge time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune(maxAge)
		}
	}
}
