package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// DefaultMaxTileBytes caps a fetched tile when the source sets no limit.
const DefaultMaxTileBytes = 16 << 20

// ErrTileTooLarge is returned for tiles above the source's size limit.
var ErrTileTooLarge = errors.New("loader: tile too large")

// Source fetches the raw bytes stored for a tile.
type Source interface {
	Fetch(ctx context.Context, key maptile.Tile) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, key maptile.Tile) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, key maptile.Tile) ([]byte, error) {
	return f(ctx, key)
}

// Expand substitutes {z}, {x} and {y} in template with the tile address.
func Expand(template string, key maptile.Tile) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(int(key.Z)),
		"{x}", strconv.FormatUint(uint64(key.X), 10),
		"{y}", strconv.FormatUint(uint64(key.Y), 10),
	).Replace(template)
}

// DirSource reads tiles from a directory tree.
type DirSource struct {
	Root string
	// Pattern is the path of a tile below Root, "{z}/{x}/{y}.png" when empty.
	Pattern string
	// MaxBytes caps a tile file, DefaultMaxTileBytes when zero.
	MaxBytes int64
}

func (s DirSource) Fetch(ctx context.Context, key maptile.Tile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pattern := s.Pattern
	if pattern == "" {
		pattern = "{z}/{x}/{y}.png"
	}
	f, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(Expand(pattern, key))))
	if err != nil {
		return nil, fmt.Errorf("loader: read tile %v: %w", key, err)
	}
	defer f.Close()

	data, err := readLimited(f, s.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("loader: read tile %v: %w", key, err)
	}
	return data, nil
}

// HTTPSource downloads tiles from a URL template such as
// "https://tiles.example.com/{z}/{x}/{y}.png".
type HTTPSource struct {
	URL       string
	Client    *http.Client
	UserAgent string
	// MaxBytes caps a response body, DefaultMaxTileBytes when zero.
	MaxBytes int64
}

func (s HTTPSource) Fetch(ctx context.Context, key maptile.Tile) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, Expand(s.URL, key), nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch tile %v: %w", key, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("loader: fetch tile %v: %s", key, res.Status)
	}
	data, err := readLimited(res.Body, s.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("loader: read tile %v: %w", key, err)
	}
	return data, nil
}

// readLimited reads r up to limit bytes and fails if there is more.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxTileBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTileTooLarge, limit)
	}
	return data, nil
}
