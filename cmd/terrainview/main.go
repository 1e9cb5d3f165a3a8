// Command terrainview renders the tile engine headlessly: it zooms an orbit
// camera from the top of the world down to a configured elevation, lets the
// loader fill the tiles in between frames and writes a top-down preview.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/gogpu/terrain"
	"github.com/gogpu/terrain/camera"
	"github.com/gogpu/terrain/config"
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/preview"
	"github.com/gogpu/terrain/tiling"
)

func main() {
	_ = godotenv.Load(".env")

	conf := config.Default()

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Renders a terrain tile quadtree to a PNG preview.").
		Options(&conf)
	cli.Load()

	logger, err := newLogger(conf)
	if err != nil {
		slog.Error("invalid log settings", "err", err)
		os.Exit(1)
	}
	terrain.SetLogger(logger)

	if err := conf.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(ctx, conf, logger); err != nil {
		logger.Error("terrainview failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conf config.Config, logger *slog.Logger) error {
	if conf.MetricsAddr != "" {
		srv := serveMetrics(conf.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	heightDecoder, err := loader.ParseHeightFormat(conf.HeightFormat)
	if err != nil {
		return err
	}
	limit := rate.Inf
	if conf.LoadRate > 0 {
		limit = rate.Limit(conf.LoadRate)
	}
	async := loader.NewAsync(loader.Options{
		Sat:           newSource(conf.SatSource),
		Height:        newSource(conf.HeightSource),
		HeightDecoder: heightDecoder,
		Rate:          limit,
		Burst:         conf.LoadBurst,
		Workers:       conf.LoadWorkers,
		CacheSize:     conf.CacheSize,
	})
	defer async.Close()

	controls := camera.NewOrbit(orb.Point{}, conf.CameraMaxDist, conf.CameraMinDist, conf.CameraMaxDist, conf.MaxZoom)
	canvas, err := terrain.NewCanvas(controls,
		terrain.WithConfig(conf),
		terrain.WithLoader(async),
	)
	if err != nil {
		return err
	}
	if err := canvas.Build(); err != nil {
		return err
	}

	logger.Info("starting terrainview",
		"builder", canvas.MapBuilderKey(),
		"builders", strings.Join(canvas.MapBuilderKeys(), ","),
		"max_zoom", conf.MaxZoom,
		"frames", conf.Frames,
	)

	redraws := 0
	for frame := range conf.Frames {
		if ctx.Err() != nil {
			break
		}
		controls.SetRadius(frameRadius(conf, frame))
		logger.Debug("frame",
			"frame", frame,
			"zoom", controls.ZoomLevel(),
			"pending_loads", async.Pending(),
		)
		if canvas.Render() {
			redraws++
		}
		async.Wait()
	}
	// Apply the loads of the last frame.
	if canvas.Render() {
		redraws++
	}

	world := tiling.WorldBound(conf.SceneWidth, conf.SceneHeight)
	dc := preview.NewRenderer(conf.CacheSize).Render(canvas.Meshes(), world, conf.Width, conf.Height)
	defer dc.Close()
	if err := dc.SavePNG(conf.Output); err != nil {
		return fmt.Errorf("save preview: %w", err)
	}

	stats := async.CacheStats()
	logger.Info("preview written",
		"output", conf.Output,
		"zoom", controls.ZoomLevel(),
		"active_tiles", len(canvas.ActiveTiles()),
		"redraws", redraws,
		"cache_hit_rate", stats.HitRate,
	)
	return nil
}

// frameRadius moves the camera geometrically from CameraMaxDist to
// InitialElevation over the configured frames.
func frameRadius(conf config.Config, frame int) float64 {
	if conf.Frames <= 1 {
		return conf.InitialElevation
	}
	f := float64(frame) / float64(conf.Frames-1)
	return conf.CameraMaxDist * math.Pow(conf.InitialElevation/conf.CameraMaxDist, f)
}

func newSource(s string) loader.Source {
	switch {
	case s == "":
		return nil
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return loader.HTTPSource{URL: s, UserAgent: "terrainview"}
	default:
		return loader.DirSource{Root: s}
	}
}

func newLogger(conf config.Config) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch conf.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h), nil
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}
