package kernel

import (
	"fmt"
	"runtime"

	"github.com/smoynes/sv32os/internal/log"
)

// KernelPanic is the fatal, unrecoverable error this kernel raises for
// every condition spec.md §7 documents as fatal: an exhausted process
// table, an out-of-memory allocator, an unknown syscall number, an
// unexpected trap cause, a misaligned page mapping, or a virtio probe
// mismatch. It carries the caller's file and line, the way a real
// panic handler reports where the kernel died before halting.
type KernelPanic struct {
	File    string
	Line    int
	Message string
}

func (p *KernelPanic) Error() string {
	return fmt.Sprintf("PANIC: %s:%d: %s", p.File, p.Line, p.Message)
}

// Fatal logs msg at Error level, if logger is non-nil, and raises a
// KernelPanic built from the caller's location. It never returns. The
// boot command's top-level run loop is expected to recover this panic,
// log it, and halt; tests that exercise a fatal path recover it with an
// ordinary deferred recover.
func Fatal(logger *log.Logger, format string, args ...any) {
	_, file, line, _ := runtime.Caller(1)
	msg := fmt.Sprintf(format, args...)

	if logger != nil {
		logger.Error(msg, "file", file, "line", line)
	}

	panic(&KernelPanic{File: file, Line: line, Message: msg})
}
