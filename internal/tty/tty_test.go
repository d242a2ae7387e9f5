// The test here is skipped whenever stdin is not a terminal (ErrNoTTY),
// which is always true under "go test" since it redirects standard
// input. Build a test binary and run it directly to exercise it:
//
//	$ go test -c && ./tty.test
package tty_test

import (
	"errors"
	"testing"

	"github.com/smoynes/sv32os/internal/tty"
)

func TestConsole_PutAndGet(t *testing.T) {
	console, err := tty.NewConsole()
	if errors.Is(err, tty.ErrNoTTY) {
		t.Skipf("stdin is not a terminal: %s", err)
	}

	if err != nil {
		t.Fatalf("NewConsole: %s", err)
	}

	defer console.Restore()

	console.ConsolePut('!')

	if _, ok := console.ConsoleGet(); ok {
		t.Log("a byte was already queued before any key was pressed")
	}
}
