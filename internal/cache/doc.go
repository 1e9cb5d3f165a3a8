// Package cache provides the generic LRU cache the tile loader keeps decoded
// imagery and elevation data in, and the preview keeps converted textures in.
//
//	c := cache.New[string, int](256)
//	c.Set("14/8192/5461", 42)
//	v, ok := c.Get("14/8192/5461")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
