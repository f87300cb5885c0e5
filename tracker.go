// SPDX-License-Identifier: Apache-2.0

package unmanaged

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// allocClass distinguishes plain from aligned allocations in the ledger.
// The two classes use different acquisition paths, so the ledger keeps
// them apart for diagnostics.
type allocClass uint8

const (
	classPlain allocClass = iota
	classAligned
)

func (c allocClass) String() string {
	if c == classAligned {
		return "aligned"
	}
	return "plain"
}

// Leak describes one still-live allocation reported by the ledger.
type Leak struct {
	// Address is the starting address of the leaked block.
	Address uintptr
	// Size is the requested byte length of the block.
	Size int
	// Class reports whether the block came from the plain or the aligned
	// allocation path.
	Class string
	// Site is the file:line of the call that allocated the block.
	Site string
}

// TestingT is the subset of testing.TB needed by AssertNoLeaks.
type TestingT interface {
	Errorf(format string, args ...any)
	Helper()
}

// Leaks returns a record for every allocation that is still live in the
// tracking ledger. It returns nil when tracking is compiled out.
func Leaks() []Leak {
	return liveRecords()
}

// ReportLeaks writes a human-readable leak report to w, one line per
// still-live allocation, and returns the number of leaks reported.
func ReportLeaks(w io.Writer) int {
	leaks := liveRecords()
	for _, l := range leaks {
		fmt.Fprintf(w, "leaked allocation: address=0x%x size=%d class=%s allocated at %s\n",
			l.Address, l.Size, l.Class, l.Site)
	}
	return len(leaks)
}

// LogLeaks emits one structured log entry per still-live allocation and
// returns the number of leaks logged.
func LogLeaks(logger *zap.Logger) int {
	leaks := liveRecords()
	for _, l := range leaks {
		logger.Error("leaked allocation",
			zap.Uintptr("address", l.Address),
			zap.Int("size", l.Size),
			zap.String("class", l.Class),
			zap.String("site", l.Site),
		)
	}
	return len(leaks)
}

// AssertNoLeaks fails the test when the ledger still holds live
// allocations. It is a no-op when tracking is compiled out.
func AssertNoLeaks(t TestingT) {
	t.Helper()
	for _, l := range liveRecords() {
		t.Errorf("leaked allocation: address=0x%x size=%d class=%s allocated at %s",
			l.Address, l.Size, l.Class, l.Site)
	}
}

// ResetTracking discards all ledger state, both live and disposed
// records. It exists so test processes can isolate cases from each
// other; production code has no reason to call it.
func ResetTracking() {
	resetTracking()
}

// callSite returns the file:line of the nearest caller outside this
// package. Frames inside the package are skipped so that the recorded
// site points at user code; package-internal test files count as user
// code.
func callSite() string {
	var pcs [16]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		internal := strings.Contains(frame.Function, "unmanaged-sub002.") &&
			!strings.HasSuffix(frame.File, "_test.go")
		if !internal || !more {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
	}
}
