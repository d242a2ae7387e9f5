package fs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// tar.go implements just enough of the POSIX ustar format (spec.md
// §4.8) to read and write a small, fixed-size set of flat files: header
// parsing and construction, octal field encoding, and the checksum
// algorithm that treats the checksum field itself as spaces while
// summing.

// ErrBadArchive is returned for a header whose size field holds a
// non-octal digit, and by BuildImage for a file or image too large to
// pack. A header without the "ustar" magic is skipped by Init, not
// reported.
var ErrBadArchive = errors.New("fs: malformed tar header")

const headerSize = 512

// tarHeader is a single 512-byte ustar header, addressed by the
// standard POSIX field offsets.
type tarHeader struct {
	raw [headerSize]byte
}

func cStr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}

func (h *tarHeader) name() string { return cStr(h.raw[0:100]) }

func (h *tarHeader) setName(name string) {
	for i := range h.raw[0:100] {
		h.raw[i] = 0
	}

	copy(h.raw[0:100], name)
}

func (h *tarHeader) magic() string { return strings.TrimRight(cStr(h.raw[257:263]), "\x00") }

func (h *tarHeader) size() (uint32, error) {
	return parseOctal(h.raw[124:136])
}

func (h *tarHeader) setSize(n uint32) {
	writeOctal(h.raw[124:135], uint64(n))
	h.raw[135] = 0
}

func (h *tarHeader) setStandardFields() {
	copy(h.raw[100:108], "000644\x00")  // mode
	copy(h.raw[108:116], "0000000\x00") // uid
	copy(h.raw[116:124], "0000000\x00") // gid
	copy(h.raw[136:148], "00000000000\x00")
	h.raw[156] = '0' // typeflag: regular file
	copy(h.raw[257:263], "ustar\x00")
	copy(h.raw[263:265], "00")
}

// setChecksum computes and writes the header checksum the way ustar
// requires: the checksum field itself is treated as eight spaces while
// summing every byte of the header, then the sum is written back as six
// octal digits followed by a NUL and a space.
func (h *tarHeader) setChecksum() {
	for i := 148; i < 156; i++ {
		h.raw[i] = ' '
	}

	var sum uint32
	for _, b := range h.raw {
		sum += uint32(b)
	}

	digits := make([]byte, 6)
	writeOctal(digits, uint64(sum))
	copy(h.raw[148:154], digits)
	h.raw[154] = 0
	h.raw[155] = ' '
}

// parseOctal parses a NUL/space-terminated octal field. It rejects any
// byte that is not an octal digit rather than silently truncating,
// unlike some lenient tar readers.
func parseOctal(b []byte) (uint32, error) {
	s := strings.TrimRight(cStr(b), " ")
	if s == "" {
		return 0, nil
	}

	var n uint32

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '7' {
			return 0, fmt.Errorf("%w: invalid octal digit %q", ErrBadArchive, c)
		}

		n = n*8 + uint32(c-'0')
	}

	return n, nil
}

// writeOctal writes n as zero-padded octal digits filling b exactly.
func writeOctal(b []byte, n uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte('0' + n%8)
		n /= 8
	}
}

func roundUp512(n int) int {
	return (n + headerSize - 1) &^ (headerSize - 1)
}

// Entry is one file to pack into a tar image.
type Entry struct {
	Name string
	Data []byte
}

// BuildImage packs entries into a single ustar image no larger than
// DiskMaxSize, in the same layout Flush writes: a header immediately
// followed by the file's data, rounded up to the next 512-byte
// boundary, for each entry in order.
func BuildImage(entries []Entry) ([]byte, error) {
	buf := make([]byte, DiskMaxSize)
	off := 0

	for _, e := range entries {
		if len(e.Data) > DataMax {
			return nil, fmt.Errorf("%w: %s: file too large", ErrBadArchive, e.Name)
		}

		if off+headerSize > len(buf) {
			return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrBadArchive, DiskMaxSize)
		}

		var h tarHeader
		h.setName(e.Name)
		h.setSize(uint32(len(e.Data)))
		h.setStandardFields()
		h.setChecksum()

		copy(buf[off:off+headerSize], h.raw[:])
		off += headerSize

		n := copy(buf[off:], e.Data)
		off += roundUp512(n)
	}

	return buf, nil
}
