package solarkernel

import "github.com/melix/astro4j-sub008/memmgr"

// Memory exposes the underlying memmgr.Manager for advanced use (e.g.
// direct ref-count inspection in tests). Prefer Wrap/FlushImages for normal
// usage.
func (k *Kernel) Memory() *memmgr.Manager { return k.memory }
