package testutil

import (
	"os"
	"testing"

	"github.com/openaerial/gcptools/internal/monitoring"
)

func TestWriteTempFile(t *testing.T) {
	path := WriteTempFile(t, "rows.txt", "img1.jpg M1 10 10\n")

	data, err := os.ReadFile(path)
	AssertNoError(t, err)
	if string(data) != "img1.jpg M1 10 10\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestGPSTIFF_Layout(t *testing.T) {
	data := GPSTIFF(34.05, -117.001)

	if len(data) != 128 {
		t.Fatalf("fixture is %d bytes, want 128", len(data))
	}
	if string(data[:2]) != "II" {
		t.Errorf("fixture is not little-endian TIFF: %q", data[:2])
	}
}

func TestDMS(t *testing.T) {
	tests := []struct {
		v         float64
		deg, min  uint32
		secTenths uint32
	}{
		{34.05, 34, 3, 0},
		{-117.001, 117, 0, 36},
		{0, 0, 0, 0},
	}

	for _, tt := range tests {
		deg, min, secTenths := dms(tt.v)
		if deg != tt.deg || min != tt.min || secTenths != tt.secTenths {
			t.Errorf("dms(%v) = %d°%d'%d, want %d°%d'%d",
				tt.v, deg, min, secTenths, tt.deg, tt.min, tt.secTenths)
		}
	}
}

func TestMuteLogs(t *testing.T) {
	MuteLogs(t)

	monitoring.Warnf("should be silent")
	if monitoring.Warnings() != 1 {
		t.Error("warning counter should still count while muted")
	}
}
