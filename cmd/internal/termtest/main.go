// Termtest is a manual testing tool for the console bridge. Lacking
// simple PTY support, running this tool by hand is easier than writing
// an automated test for real terminal I/O.
package main

import (
	"errors"
	"log"
	"time"

	"github.com/smoynes/sv32os/internal/tty"
)

func main() {
	console, err := tty.NewConsole()
	if errors.Is(err, tty.ErrNoTTY) {
		log.Fatalf("not a terminal: %s", err)
	}

	if err != nil {
		log.Fatal(err)
	}

	defer console.Restore()

	console.ConsolePut('>')
	console.ConsolePut(' ')

	poll := time.Tick(50 * time.Millisecond)
	timeout := time.After(5 * time.Second)

	for {
		select {
		case <-poll:
			if b, ok := console.ConsoleGet(); ok {
				console.ConsolePut(b)
			}
		case <-timeout:
			console.ConsolePut('\n')
			return
		}
	}
}
