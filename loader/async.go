package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb/maptile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/gogpu/terrain/internal/cache"
	"github.com/gogpu/terrain/internal/logging"
	"github.com/gogpu/terrain/scene"
)

// Request kinds, used as cache key part and metric label.
const (
	KindSat    = "sat"
	KindHeight = "height"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "terrain_loader_requests_total",
	Help: "Tile load requests by kind and result.",
}, []string{"kind", "result"})

// Options configures an Async loader.
type Options struct {
	// Sat and Height are the tile sources; a nil source fails every request
	// of its kind with ErrNoSource.
	Sat    Source
	Height Source
	// HeightDecoder decodes Height data, DecodeTerrainRGB when nil.
	HeightDecoder HeightDecoder
	// Rate caps fetches per second (rate.Inf for no limit) with Burst.
	Rate  rate.Limit
	Burst int
	// Workers bounds concurrent fetches, 4 when < 1.
	Workers int
	// CacheSize bounds the decoded tile cache, 0 disables caching.
	CacheSize int
}

type cacheKey struct {
	kind string
	key  maptile.Tile
}

// Async fetches and decodes on background goroutines and queues every
// completion until Dispatch is called.
type Async struct {
	sat, height Source
	decodeH     HeightDecoder
	limiter     *rate.Limiter
	sem         chan struct{}
	cache       *cache.Cache[cacheKey, any]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	queue []func()
}

// NewAsync returns a running loader. Call Close to stop it.
func NewAsync(opts Options) *Async {
	if opts.HeightDecoder == nil {
		opts.HeightDecoder = DecodeTerrainRGB
	}
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Rate == 0 {
		opts.Rate = rate.Inf
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}

	a := &Async{
		sat:     opts.Sat,
		height:  opts.Height,
		decodeH: opts.HeightDecoder,
		limiter: rate.NewLimiter(opts.Rate, opts.Burst),
		sem:     make(chan struct{}, opts.Workers),
	}
	if opts.CacheSize > 0 {
		a.cache = cache.New[cacheKey, any](opts.CacheSize)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a
}

// LoadSat implements Loader.
func (a *Async) LoadSat(key maptile.Tile, onSuccess func(*scene.Texture), onError func(error)) {
	a.request(KindSat, key, a.sat,
		func(data []byte) (any, error) {
			img, err := DecodeImage(data)
			if err != nil {
				return nil, err
			}
			return scene.NewTexture(img), nil
		},
		func(v any) { onSuccess(v.(*scene.Texture)) },
		onError)
}

// LoadHeight implements Loader.
func (a *Async) LoadHeight(key maptile.Tile, onSuccess func(*HeightMap), onError func(error)) {
	a.request(KindHeight, key, a.height,
		func(data []byte) (any, error) { return a.decodeH(data) },
		func(v any) { onSuccess(v.(*HeightMap)) },
		onError)
}

func (a *Async) request(kind string, key maptile.Tile, src Source,
	decode func([]byte) (any, error), deliver func(any), fail func(error)) {
	log := logging.Logger()

	if a.ctx.Err() != nil {
		requestsTotal.WithLabelValues(kind, "canceled").Inc()
		return
	}
	if src == nil {
		requestsTotal.WithLabelValues(kind, "error").Inc()
		a.enqueue(func() { fail(ErrNoSource) })
		return
	}

	ck := cacheKey{kind: kind, key: key}
	if a.cache != nil {
		if v, ok := a.cache.Get(ck); ok {
			requestsTotal.WithLabelValues(kind, "cached").Inc()
			a.enqueue(func() { deliver(v) })
			return
		}
	}

	id := uuid.New()
	log.Debug("loader: request", "id", id, "kind", kind, "tile", key)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		v, err := a.fetch(src, key, decode)
		switch {
		case errors.Is(err, context.Canceled):
			requestsTotal.WithLabelValues(kind, "canceled").Inc()
			log.Debug("loader: canceled", "id", id)
			return
		case err != nil:
			requestsTotal.WithLabelValues(kind, "error").Inc()
			log.Debug("loader: failed", "id", id, "err", err)
			a.enqueue(func() { fail(err) })
			return
		}

		if a.cache != nil {
			a.cache.Set(ck, v)
		}
		requestsTotal.WithLabelValues(kind, "ok").Inc()
		log.Debug("loader: done", "id", id)
		a.enqueue(func() { deliver(v) })
	}()
}

func (a *Async) fetch(src Source, key maptile.Tile, decode func([]byte) (any, error)) (any, error) {
	select {
	case a.sem <- struct{}{}:
	case <-a.ctx.Done():
		return nil, a.ctx.Err()
	}
	defer func() { <-a.sem }()

	if err := a.limiter.Wait(a.ctx); err != nil {
		if a.ctx.Err() != nil {
			return nil, a.ctx.Err()
		}
		return nil, err
	}
	data, err := src.Fetch(a.ctx, key)
	if err != nil {
		if a.ctx.Err() != nil {
			return nil, a.ctx.Err()
		}
		return nil, err
	}
	return decode(data)
}

func (a *Async) enqueue(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx.Err() != nil {
		return
	}
	a.queue = append(a.queue, fn)
}

// Pending returns the number of queued completions.
func (a *Async) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Dispatch implements Dispatcher. Callbacks queued while dispatching run on
// the next call.
func (a *Async) Dispatch() int {
	a.mu.Lock()
	queue := a.queue
	a.queue = nil
	a.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Wait blocks until every in-flight fetch has queued its completion.
// It must not run concurrently with new Load calls.
func (a *Async) Wait() {
	a.wg.Wait()
}

// CacheStats reports the decoded tile cache statistics.
func (a *Async) CacheStats() cache.Stats {
	if a.cache == nil {
		return cache.Stats{}
	}
	return a.cache.Stats()
}

// Close cancels outstanding fetches and drops queued completions.
func (a *Async) Close() {
	a.cancel()
	a.wg.Wait()

	a.mu.Lock()
	a.queue = nil
	a.mu.Unlock()
}
