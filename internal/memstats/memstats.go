// Package memstats runs memory reclamation passes and reports free memory
// for the capture loop diagnostics.
package memstats

import (
	"math"
	"runtime"
	"runtime/debug"
)

// Runtime reclaims memory through the Go runtime.
type Runtime struct {
	readStats func(*runtime.MemStats)
	limit     func() int64
}

// New returns a Runtime reclaimer.
func New() *Runtime {
	return &Runtime{
		readStats: runtime.ReadMemStats,
		limit:     func() int64 { return debug.SetMemoryLimit(-1) },
	}
}

// Reclaim forces a collection and returns freed pages to the OS.
func (r *Runtime) Reclaim() {
	debug.FreeOSMemory()
}

// FreeBytes reports headroom below GOMEMLIMIT when a limit is set, otherwise
// heap memory the runtime holds but is not using.
func (r *Runtime) FreeBytes() uint64 {
	var ms runtime.MemStats
	r.readStats(&ms)
	return freeBytes(&ms, r.limit())
}

func freeBytes(ms *runtime.MemStats, limit int64) uint64 {
	if limit > 0 && limit != math.MaxInt64 {
		used := ms.Sys - ms.HeapReleased
		if used >= uint64(limit) {
			return 0
		}
		return uint64(limit) - used
	}
	if ms.HeapSys < ms.HeapInuse {
		return 0
	}
	return ms.HeapSys - ms.HeapInuse
}
