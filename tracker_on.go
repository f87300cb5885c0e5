// SPDX-License-Identifier: Apache-2.0

//go:build !unmanaged_notrack

package unmanaged

import (
	"fmt"
	"sort"
)

// TrackingEnabled reports whether the allocation ledger is compiled in.
// Build with -tags unmanaged_notrack to compile it out.
const TrackingEnabled = true

// allocationRecord is the ledger metadata kept per live address.
type allocationRecord struct {
	size  uintptr
	class allocClass
	site  string
}

var (
	// liveLedger maps every live address to its metadata.
	liveLedger = map[uintptr]allocationRecord{}
	// disposedLedger remembers where released addresses were freed, so a
	// double free can report the first disposal site.
	disposedLedger = map[uintptr]string{}
)

func trackRegister(addr, size uintptr, class allocClass) {
	if prev, ok := liveLedger[addr]; ok {
		panic(fmt.Sprintf("unmanaged: address 0x%x registered twice, first allocated at %s", addr, prev.site))
	}
	liveLedger[addr] = allocationRecord{size: size, class: class, site: callSite()}
	delete(disposedLedger, addr)
}

func trackUnregister(addr uintptr) {
	if _, ok := liveLedger[addr]; !ok {
		panicNotLive(addr)
	}
	delete(liveLedger, addr)
	disposedLedger[addr] = callSite()
}

// trackAssertLive panics unless addr is a currently registered address,
// distinguishing use-after-free from never-allocated addresses.
func trackAssertLive(addr uintptr) {
	if _, ok := liveLedger[addr]; !ok {
		panicNotLive(addr)
	}
}

// trackBounds panics when [offset, offset+length) falls outside the
// registered size of addr, or when addr is not live at all.
func trackBounds(addr, offset, length uintptr) {
	rec, ok := liveLedger[addr]
	if !ok {
		panicNotLive(addr)
	}
	if offset+length > rec.size {
		panic(fmt.Sprintf("unmanaged: access of [%d, %d) is out of bounds for allocation 0x%x of %d bytes",
			offset, offset+length, addr, rec.size))
	}
}

// trackSize returns the registered size of addr when it is live.
func trackSize(addr uintptr) (uintptr, bool) {
	rec, ok := liveLedger[addr]
	return rec.size, ok
}

// trackClass returns the registered alignment class of addr, defaulting
// to plain for unknown addresses.
func trackClass(addr uintptr) allocClass {
	return liveLedger[addr].class
}

func panicNotLive(addr uintptr) {
	if site, ok := disposedLedger[addr]; ok {
		panic(fmt.Sprintf("unmanaged: use of address 0x%x after free, freed at %s", addr, site))
	}
	panic(fmt.Sprintf("unmanaged: address 0x%x was never allocated", addr))
}

func liveRecords() []Leak {
	leaks := make([]Leak, 0, len(liveLedger))
	for addr, rec := range liveLedger {
		leaks = append(leaks, Leak{
			Address: addr,
			Size:    int(rec.size),
			Class:   rec.class.String(),
			Site:    rec.site,
		})
	}
	sort.Slice(leaks, func(i, j int) bool { return leaks[i].Address < leaks[j].Address })
	return leaks
}

func resetTracking() {
	clear(liveLedger)
	clear(disposedLedger)
}
