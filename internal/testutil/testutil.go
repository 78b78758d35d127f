// Package testutil provides shared test utilities and fixtures.
package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/openaerial/gcptools/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteTempFile writes content to a file in a fresh temp directory and
// returns its path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// MuteLogs silences the monitoring logger and resets the warning counter
// for the duration of the test.
func MuteLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	monitoring.ResetWarnings()
	t.Cleanup(func() {
		monitoring.Logf = original
		monitoring.ResetWarnings()
	})
}

// GPSTIFF builds a minimal little-endian TIFF whose GPS IFD places the
// image at the given WGS84 coordinates. Coordinates are encoded as
// degree/minute/second rationals with tenth-of-a-second resolution
// (roughly 3 m), which is plenty for fixture imagery.
func GPSTIFF(lat, lon float64) []byte {
	buf := new(bytes.Buffer)
	le := binary.LittleEndian

	write := func(v interface{}) { _ = binary.Write(buf, le, v) }
	entry := func(tag, typ uint16, count, value uint32) {
		write(tag)
		write(typ)
		write(count)
		write(value)
	}

	latRef, lonRef := uint32('N'), uint32('E')
	if lat < 0 {
		latRef = 'S'
	}
	if lon < 0 {
		lonRef = 'W'
	}

	// Header plus an IFD0 holding only the GPS sub-IFD pointer. The GPS
	// IFD starts at offset 26 and its rational triplets live at 80 and
	// 104, right after the entry table.
	buf.WriteString("II")
	write(uint16(42))
	write(uint32(8))
	write(uint16(1))
	entry(0x8825, 4, 1, 26)
	write(uint32(0))

	write(uint16(4))
	entry(1, 2, 2, latRef)
	entry(2, 5, 3, 80)
	entry(3, 2, 2, lonRef)
	entry(4, 5, 3, 104)
	write(uint32(0))

	for _, v := range []float64{lat, lon} {
		deg, min, secTenths := dms(v)
		write(deg)
		write(uint32(1))
		write(min)
		write(uint32(1))
		write(secTenths)
		write(uint32(10))
	}
	return buf.Bytes()
}

// dms splits |v| into whole degrees, whole minutes and tenths of a second.
func dms(v float64) (deg, min, secTenths uint32) {
	abs := math.Abs(v)
	deg = uint32(abs)
	rem := (abs - float64(deg)) * 60
	min = uint32(rem)
	secTenths = uint32(math.Round((rem - float64(min)) * 600))
	return deg, min, secTenths
}
