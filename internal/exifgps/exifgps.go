// Package exifgps pulls the GPS position out of survey imagery. Each
// photograph of an ArUco marker carries the drone's position in its EXIF
// block; the marker's ID is encoded in the filename by the detection
// tooling upstream.
package exifgps

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/openaerial/gcptools/internal/monitoring"
)

// imageExtensions are the file types probed for EXIF data.
var imageExtensions = []string{".jpg", ".jpeg", ".tif", ".tiff", ".dng", ".png", ".webp"}

// Observation is one geotagged marker sighting.
type Observation struct {
	MarkerID string
	File     string
	Lat      float64
	Lon      float64
}

// IsImageFile reports whether the filename has a supported image extension.
func IsImageFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// MarkerIDFromFilename derives the marker ID from an image filename: the
// final underscore-separated token of the stem, e.g. "IMG_0231_A17.jpg"
// yields "A17". A stem without underscores is used whole.
func MarkerIDFromFilename(name string) string {
	stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
	if i := strings.LastIndex(stem, "_"); i >= 0 {
		return stem[i+1:]
	}
	return stem
}

// ReadLatLong decodes the EXIF block of a single image and returns its
// GPS position.
func ReadLatLong(r io.Reader) (lat, lon float64, err error) {
	x, err := exif.Decode(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode EXIF: %w", err)
	}
	lat, lon, err = x.LatLong()
	if err != nil {
		return 0, 0, fmt.Errorf("no GPS position in EXIF: %w", err)
	}
	return lat, lon, nil
}

// ScanDir walks the root of fsys, reading the GPS position of every image
// file. Files without usable EXIF GPS data are reported and skipped;
// observations come back in directory order so downstream tie-breaking is
// deterministic.
func ScanDir(fsys fs.FS) ([]Observation, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read imagery directory: %w", err)
	}

	var obs []Observation
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}

		f, err := fsys.Open(entry.Name())
		if err != nil {
			monitoring.Warnf("%s: %v; file skipped", entry.Name(), err)
			continue
		}
		lat, lon, err := ReadLatLong(f)
		f.Close()
		if err != nil {
			monitoring.Warnf("%s: %v; file skipped", entry.Name(), err)
			continue
		}

		obs = append(obs, Observation{
			MarkerID: MarkerIDFromFilename(entry.Name()),
			File:     entry.Name(),
			Lat:      lat,
			Lon:      lon,
		})
	}
	return obs, nil
}
