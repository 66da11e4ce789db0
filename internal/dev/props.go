package dev

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/born-ml/accel/internal/config"
	"github.com/born-ml/accel/internal/vec"
)

// Props is the read-only capability snapshot of one accelerator on one
// device.
type Props[D vec.Dim, I vec.Index] struct {
	MultiProcessorCount  I
	GridBlockExtentMax   vec.Vec[D, I]
	GridBlockCountMax    I
	BlockThreadExtentMax vec.Vec[D, I]
	BlockThreadCountMax  I
	ThreadElemExtentMax  vec.Vec[D, I]
	ThreadElemCountMax   I
	SharedMemSizeBytes   uintptr
}

// PropsCache memoizes property queries per (accelerator, device) pair.
// Concurrent first queries for the same pair run the query once.
// Errors are not cached.
type PropsCache struct {
	group  singleflight.Group
	values sync.Map
}

var defaultCache PropsCache

// CachedProps returns the properties of accName on d from the process-wide
// cache, running query on first use. Entries are keyed by the configuration
// generation, so a config.Set makes the next query run again.
func CachedProps[D vec.Dim, I vec.Index](accName string, d *Device, query func(*Device) (Props[D, I], error)) (Props[D, I], error) {
	key := fmt.Sprintf("%s@%s#%d", accName, d.ID(), config.Generation())
	v, err := defaultCache.load(key, func() (any, error) { return query(d) })
	if err != nil {
		return Props[D, I]{}, err
	}
	props, ok := v.(Props[D, I])
	if !ok {
		return Props[D, I]{}, fmt.Errorf("dev: cached props for %s on %s have type %T", accName, d, v)
	}
	return props, nil
}

func (c *PropsCache) load(key string, query func() (any, error)) (any, error) {
	if v, ok := c.values.Load(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.values.Load(key); ok {
			return v, nil
		}
		v, err := query()
		if err != nil {
			return nil, err
		}
		c.values.Store(key, v)
		return v, nil
	})
	return v, err
}
