// Package memstat reports process memory for the /memory command.
package memstat

import (
	"runtime"

	"github.com/prometheus/procfs"

	"shelter-guard/internal/domain/model"
	"shelter-guard/internal/domain/ports/adapter"
)

var _ adapter.MemoryProbe = (*Probe)(nil)

// Probe reads RSS from /proc and heap figures from the Go runtime.
// On platforms without procfs RSS falls back to the memory obtained from the OS.
type Probe struct {
	rss func() (uint64, bool)
}

func NewProbe() *Probe {
	return &Probe{rss: procRSS}
}

func (p *Probe) Usage() model.MemoryUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return fromMemStats(&ms, p.rss)
}

func fromMemStats(ms *runtime.MemStats, rss func() (uint64, bool)) model.MemoryUsage {
	u := model.MemoryUsage{
		RSS:       ms.Sys,
		HeapTotal: ms.HeapSys,
		HeapUsed:  ms.HeapAlloc,
	}
	// everything the runtime holds outside the heap: stacks, GC metadata, mspans
	if ms.Sys > ms.HeapSys {
		u.External = ms.Sys - ms.HeapSys
	}
	if rss != nil {
		if v, ok := rss(); ok {
			u.RSS = v
		}
	}
	return u
}

func procRSS() (uint64, bool) {
	p, err := procfs.Self()
	if err != nil {
		return 0, false
	}
	stat, err := p.Stat()
	if err != nil {
		return 0, false
	}
	rss := stat.ResidentMemory()
	if rss < 0 {
		return 0, false
	}
	return uint64(rss), true
}
