// Package tiles proxies an upstream slippy map tile service, re-encoding
// tiles as WebP and caching them on disk.
package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/metrics"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"
)

// TileSize is the edge length of a tile in pixels.
const TileSize = 256

var (
	// ErrOutOfRange is returned for coordinates outside the tile grid or zoom limit.
	ErrOutOfRange = errors.New("tile out of range")
	// ErrNotFound is returned when upstream has no usable tile.
	ErrNotFound = errors.New("tile not found")
)

var subdomains = []string{"a", "b", "c"}

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

// Valid reports whether the tile exists in the grid at its zoom.
func (c TileCoordinate) Valid(maxZoom int) bool {
	if c.Z < 0 || c.Z > maxZoom {
		return false
	}
	n := 1 << c.Z
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n
}

// Cache serves tiles from disk, fetching missing ones from upstream.
type Cache struct {
	client    *http.Client
	limiter   *rate.Limiter
	upstream  string
	dir       string
	userAgent string
	blank     []byte
	maxZoom   int
	quality   float32
	sub       atomic.Uint32
}

// New builds a cache from the tile configuration.
func New(cfg config.Tiles) (*Cache, error) {
	blank, err := transparentTile()
	if err != nil {
		return nil, fmt.Errorf("encode transparent tile: %w", err)
	}

	return &Cache{
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		upstream:  cfg.Upstream,
		dir:       cfg.CacheDir,
		userAgent: cfg.UserAgent,
		maxZoom:   cfg.MaxZoom,
		quality:   cfg.Quality,
		blank:     blank,
	}, nil
}

// Blank returns the transparent fallback tile.
func (c *Cache) Blank() []byte {
	return c.blank
}

// MaxZoom returns the deepest zoom level served.
func (c *Cache) MaxZoom() int {
	return c.maxZoom
}

// Path returns the on-disk location of a tile.
func (c *Cache) Path(t TileCoordinate) string {
	return filepath.Join(c.dir, strconv.Itoa(t.Z), strconv.Itoa(t.X), strconv.Itoa(t.Y)+".webp")
}

// Get returns the WebP bytes of a tile, from disk when cached.
func (c *Cache) Get(ctx context.Context, t TileCoordinate) ([]byte, error) {
	if !t.Valid(c.maxZoom) {
		return nil, ErrOutOfRange
	}

	path := c.Path(t)
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		metrics.ObserveTile("hit")
		return data, nil
	}
	metrics.ObserveTile("miss")

	data, err := c.fetch(ctx, t)
	if err != nil {
		return nil, err
	}

	if err := writeFile(path, data); err != nil {
		// the tile is still good for this response
		log.Warn().Err(err).Str("path", path).Msg("Failed to cache tile")
	}

	return data, nil
}

// fetch downloads a tile and converts it to WebP.
func (c *Cache) fetch(ctx context.Context, t TileCoordinate) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := c.buildURL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveExternal("tiles", 0, time.Since(start))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveExternal("tiles", resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		log.Trace().Str("url", url).Msg("Tile not found (404)")
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tile %s: status code %d", url, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(bodyBytes))
	if err != nil {
		log.Trace().Err(err).Str("url", url).Msg("Failed to decode image")
		return nil, ErrNotFound
	}

	// Filter out empty/1px tiles often returned by map servers for OOB areas
	if img.Bounds().Dx() <= 1 {
		log.Trace().Str("url", url).Msg("Filtered empty tile")
		return nil, ErrNotFound
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: c.quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c *Cache) buildURL(t TileCoordinate) string {
	s := strings.ReplaceAll(c.upstream, "{z}", strconv.Itoa(t.Z))
	s = strings.ReplaceAll(s, "{x}", strconv.Itoa(t.X))
	s = strings.ReplaceAll(s, "{y}", strconv.Itoa(t.Y))

	if strings.Contains(s, "{tms_y}") {
		maxCoord := (1 << t.Z) - 1
		s = strings.ReplaceAll(s, "{tms_y}", strconv.Itoa(maxCoord-t.Y))
	}
	if strings.Contains(s, "{s}") {
		n := c.sub.Add(1)
		s = strings.ReplaceAll(s, "{s}", subdomains[int(n)%len(subdomains)])
	}

	return s
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// readers must never see a partial tile
	f, err := os.CreateTemp(filepath.Dir(path), ".tile-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

func transparentTile() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type result struct {
	Coord TileCoordinate
	Err   error
}

// Prefetch warms the cache for every tile in coords using a worker pool.
// It returns how many tiles are now cached and how many failed.
func (c *Cache) Prefetch(ctx context.Context, coords []TileCoordinate, concurrency int) (cached, failed int) {
	if concurrency <= 0 {
		concurrency = 4
	}

	jobs := make(chan TileCoordinate, len(coords))
	results := make(chan result, len(coords))

	go func() {
		for _, t := range coords {
			jobs <- t
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				_, err := c.Get(ctx, t)
				if err != nil {
					log.Trace().
						Err(err).
						Int("z", t.Z).Int("x", t.X).Int("y", t.Y).
						Msg("Failed to prefetch tile")
				}
				results <- result{Coord: t, Err: err}
			}
		}()
	}
	wg.Wait()
	close(results)

	for res := range results {
		if res.Err != nil {
			failed++
		} else {
			cached++
		}
	}

	return cached, failed
}
