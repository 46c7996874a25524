package memstats

import (
	"math"
	"runtime"
	"testing"
)

func TestFreeBytes(t *testing.T) {
	tests := []struct {
		name  string
		stats runtime.MemStats
		limit int64
		want  uint64
	}{
		{
			name:  "no limit uses idle heap",
			stats: runtime.MemStats{HeapSys: 8 << 20, HeapInuse: 3 << 20},
			limit: math.MaxInt64,
			want:  5 << 20,
		},
		{
			name:  "limit headroom",
			stats: runtime.MemStats{Sys: 10 << 20, HeapReleased: 2 << 20},
			limit: 16 << 20,
			want:  8 << 20,
		},
		{
			name:  "over limit reports zero",
			stats: runtime.MemStats{Sys: 20 << 20},
			limit: 16 << 20,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := freeBytes(&tt.stats, tt.limit); got != tt.want {
				t.Errorf("freeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRuntimeReclaim(t *testing.T) {
	r := New()
	r.Reclaim()
	if r.FreeBytes() > math.MaxInt64 {
		t.Error("free bytes out of range")
	}
}
