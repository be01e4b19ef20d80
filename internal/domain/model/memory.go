package model

import (
	"math"
	"strconv"
	"strings"
)

// MemoryUsage is a snapshot of process memory, all values in bytes.
type MemoryUsage struct {
	RSS       uint64
	HeapTotal uint64
	HeapUsed  uint64
	External  uint64
}

// FormatMB renders bytes as megabytes rounded to two decimals, e.g. "12.5 MB".
func FormatMB(b uint64) string {
	mb := math.Round(float64(b)/1024/1024*100) / 100
	return strconv.FormatFloat(mb, 'f', -1, 64) + " MB"
}

// Report renders the four-line /memory reply.
func (m MemoryUsage) Report() string {
	var sb strings.Builder
	sb.WriteString("RSS: " + FormatMB(m.RSS) + " \n")
	sb.WriteString("HEAP (total): " + FormatMB(m.HeapTotal) + " \n")
	sb.WriteString("HEAP (used): " + FormatMB(m.HeapUsed) + " \n")
	sb.WriteString("EXTERNAL: " + FormatMB(m.External))
	return sb.String()
}
