// Package terrain renders a large ground surface as a quadtree of tiles,
// refining the tree where the camera looks and swapping between rendering
// strategies at runtime.
//
// # Overview
//
// A Canvas owns the active map builder (see package builder), the quadtree
// of that builder (see package quadtree) and a dirty latch. Camera changes,
// finished asset loads, configuration toggles and builder switches set the
// latch; the host calls Render once per frame and only redraws when it
// reports true.
//
// # Quick Start
//
//	controls := camera.NewOrbit(orb.Point{}, 2048, 4, 2048, cfg.MaxZoom)
//	canvas, err := terrain.NewCanvas(controls,
//	    terrain.WithConfig(cfg),
//	    terrain.WithLoader(loader.NewAsync(loader.Options{Sat: loader.DirSource{Root: "tiles"}})),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := canvas.Build(); err != nil {
//	    return err
//	}
//
//	for frame := range frames {
//	    if canvas.Render() {
//	        draw(canvas.Meshes())
//	    }
//	}
//
// # Threading
//
// The canvas is driven from a single goroutine, the host render loop.
// Loaders that fetch in the background implement loader.Dispatcher and
// their callbacks run inside Render. TriggerRender may be called from any
// goroutine.
//
// # Coordinate System
//
// The world is centered on the origin in the XY plane, Z points up.
// Tile (0, 0) of every zoom level is the top-left (min X, max Y) tile.
package terrain
