package loader

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb/maptile"

	"github.com/gogpu/terrain/scene"
)

func pngSource(t *testing.T, calls *atomic.Int32) Source {
	t.Helper()
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	return SourceFunc(func(context.Context, maptile.Tile) ([]byte, error) {
		calls.Add(1)
		return data, nil
	})
}

func TestAsyncDeliversOnDispatch(t *testing.T) {
	var calls atomic.Int32
	a := NewAsync(Options{Sat: pngSource(t, &calls)})
	t.Cleanup(a.Close)

	var got *scene.Texture
	a.LoadSat(maptile.New(0, 0, 1), func(tex *scene.Texture) { got = tex }, func(err error) { t.Error(err) })
	a.Wait()

	if got != nil {
		t.Fatal("callback ran before Dispatch")
	}
	if n := a.Pending(); n != 1 {
		t.Fatalf("Pending = %d, want 1", n)
	}
	if n := a.Dispatch(); n != 1 {
		t.Fatalf("Dispatch = %d, want 1", n)
	}
	if n := a.Pending(); n != 0 {
		t.Errorf("Pending after Dispatch = %d, want 0", n)
	}
	if got == nil {
		t.Fatal("callback did not run")
	}
	if w, h := got.Size(); w != 4 || h != 4 {
		t.Errorf("texture size = %dx%d, want 4x4", w, h)
	}
	if n := a.Dispatch(); n != 0 {
		t.Errorf("second Dispatch = %d, want 0", n)
	}
}

func TestAsyncError(t *testing.T) {
	boom := errors.New("boom")
	a := NewAsync(Options{
		Height: SourceFunc(func(context.Context, maptile.Tile) ([]byte, error) { return nil, boom }),
	})
	t.Cleanup(a.Close)

	var gotErr error
	a.LoadHeight(maptile.New(0, 0, 0), func(*HeightMap) { t.Error("unexpected success") }, func(err error) { gotErr = err })
	a.Wait()
	a.Dispatch()

	if !errors.Is(gotErr, boom) {
		t.Errorf("err = %v, want boom", gotErr)
	}
}

func TestAsyncNoSource(t *testing.T) {
	a := NewAsync(Options{})
	t.Cleanup(a.Close)

	var gotErr error
	a.LoadSat(maptile.New(0, 0, 0), func(*scene.Texture) {}, func(err error) { gotErr = err })
	a.Dispatch()
	if !errors.Is(gotErr, ErrNoSource) {
		t.Errorf("err = %v, want ErrNoSource", gotErr)
	}
}

func TestAsyncCache(t *testing.T) {
	var calls atomic.Int32
	a := NewAsync(Options{Sat: pngSource(t, &calls), CacheSize: 8})
	t.Cleanup(a.Close)

	key := maptile.New(1, 1, 1)
	var first, second *scene.Texture
	a.LoadSat(key, func(tex *scene.Texture) { first = tex }, func(err error) { t.Error(err) })
	a.Wait()
	a.Dispatch()

	a.LoadSat(key, func(tex *scene.Texture) { second = tex }, func(err error) { t.Error(err) })
	a.Dispatch()

	if calls.Load() != 1 {
		t.Errorf("source fetched %d times, want 1", calls.Load())
	}
	if first == nil || first != second {
		t.Errorf("cached texture = %p, want %p", second, first)
	}
	if s := a.CacheStats(); s.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", s.Hits)
	}
}

func TestAsyncHeightDecoder(t *testing.T) {
	a := NewAsync(Options{
		Height: SourceFunc(func(context.Context, maptile.Tile) ([]byte, error) {
			return []byte{0, 1, 0, 2, 0, 3, 0, 4}, nil
		}),
		HeightDecoder: DecodeHGT,
	})
	t.Cleanup(a.Close)

	var got *HeightMap
	a.LoadHeight(maptile.New(0, 0, 0), func(hm *HeightMap) { got = hm }, func(err error) { t.Error(err) })
	a.Wait()
	a.Dispatch()

	if got == nil || got.Max != 4 {
		t.Fatalf("height map = %+v, want max 4", got)
	}
}

func TestAsyncClose(t *testing.T) {
	release := make(chan struct{})
	a := NewAsync(Options{
		Sat: SourceFunc(func(ctx context.Context, _ maptile.Tile) ([]byte, error) {
			select {
			case <-release:
				return nil, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
	})

	called := false
	a.LoadSat(maptile.New(0, 0, 0), func(*scene.Texture) { called = true }, func(error) { called = true })
	a.Close()
	close(release)

	if n := a.Dispatch(); n != 0 {
		t.Errorf("Dispatch after Close = %d, want 0", n)
	}
	if called {
		t.Error("callback ran after Close")
	}

	a.LoadSat(maptile.New(0, 0, 0), func(*scene.Texture) { called = true }, func(error) { called = true })
	a.Dispatch()
	if called {
		t.Error("request after Close called back")
	}
}

func TestNop(t *testing.T) {
	var l Loader = Nop{}
	l.LoadSat(maptile.New(0, 0, 0), func(*scene.Texture) { t.Error("called") }, func(error) { t.Error("called") })
	l.LoadHeight(maptile.New(0, 0, 0), func(*HeightMap) { t.Error("called") }, func(error) { t.Error("called") })
}
