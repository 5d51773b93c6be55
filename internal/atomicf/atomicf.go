// Package atomicf provides lock-free atomic operations on float32 slots.
//
// sync/atomic has no float type, so values are accessed through their IEEE-754
// bit pattern and additions retry a compare-and-swap until no other writer
// intervened. Additions are commutative, so concurrent writers to the same
// slot always combine without loss (up to float rounding order).
package atomicf

import (
	"math"
	"sync/atomic"
	"unsafe"
)

func bitsPtr(addr *float32) *uint32 {
	return (*uint32)(unsafe.Pointer(addr))
}

// Load atomically loads *addr.
func Load(addr *float32) float32 {
	return math.Float32frombits(atomic.LoadUint32(bitsPtr(addr)))
}

// Store atomically stores v into *addr.
func Store(addr *float32, v float32) {
	atomic.StoreUint32(bitsPtr(addr), math.Float32bits(v))
}

// Add atomically adds delta to *addr and returns the new value.
func Add(addr *float32, delta float32) float32 {
	p := bitsPtr(addr)
	for {
		old := atomic.LoadUint32(p)
		next := math.Float32bits(math.Float32frombits(old) + delta)
		if atomic.CompareAndSwapUint32(p, old, next) {
			return math.Float32frombits(next)
		}
	}
}

// LoadRow copies src into dst with one atomic load per element.
// Assumes len(dst) >= len(src).
func LoadRow(dst, src []float32) {
	for i := range src {
		dst[i] = Load(&src[i])
	}
}
