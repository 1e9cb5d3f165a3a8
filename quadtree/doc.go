// Package quadtree implements the tile quadtree and the level-of-detail
// selection that walks it.
//
// A tree is rooted at one world-extent Tile. Tiles are split lazily, at most
// once, into four quadrants (or into an explicit empty set when the split
// policy says the tile cannot be refined). FindVisible returns the tiles that
// intersect a view region at the requested zoom, splitting on the way.
//
// Every tree belongs to one Generation epoch. Asynchronous work started for a
// tile checks Tile.Live before touching it, so work that outlives its tree is
// dropped.
package quadtree
