// SPDX-License-Identifier: Apache-2.0

//go:build unmanaged_notrack

package unmanaged

// TrackingEnabled reports whether the allocation ledger is compiled in.
// This build has it compiled out; every check below is a no-op the
// compiler can eliminate.
const TrackingEnabled = false

func trackRegister(addr, size uintptr, class allocClass) {}

func trackUnregister(addr uintptr) {}

func trackAssertLive(addr uintptr) {}

func trackBounds(addr, offset, length uintptr) {}

func trackSize(addr uintptr) (uintptr, bool) { return 0, false }

func trackClass(addr uintptr) allocClass { return classPlain }

func liveRecords() []Leak { return nil }

func resetTracking() {}
