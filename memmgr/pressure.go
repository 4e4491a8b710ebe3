package memmgr

import (
	"runtime"

	"github.com/pbnjay/memory"
)

// freeHeapRatio approximates "free heap / total heap" (spec §4.1) using the
// runtime's own heap accounting against the OS-reported total physical
// memory from github.com/pbnjay/memory, the same package nightlight uses to
// size its frame cache. There is no cross-platform "free RAM" syscall in the
// standard library, so HeapAlloc relative to total physical memory is the
// portable proxy: it answers "how much of the machine is this process
// currently holding in live heap objects".
func freeHeapRatio() float64 {
	total := memory.TotalMemory()
	if total == 0 {
		return 1 // unknown total: never block progress on a false pressure reading
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	used := float64(ms.HeapAlloc)
	return 1 - used/float64(total)
}
