// Package platform declares the narrow boundary between the kernel and
// the firmware underneath it, corresponding to spec.md §4.1's platform
// runtime gateway.
package platform

// Gateway is the kernel's view of firmware: put one byte to the
// console, try to get one byte from it. It mirrors the two legacy SBI
// console extension calls (putchar=1, getchar=2) that a real supervisor
// call wraps with an ECALL and an SBI EID/FID pair.
type Gateway interface {
	// ConsolePut writes one byte to the console.
	ConsolePut(b byte)

	// ConsoleGet reads one byte from the console without blocking. ok
	// is false when no byte is available, mirroring the firmware
	// convention of returning -1.
	ConsoleGet() (b byte, ok bool)
}
