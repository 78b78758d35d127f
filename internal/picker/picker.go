// Package picker selects representative images for each ground-control
// marker. Marker detections arrive as a flat table of pixel coordinates;
// the picker ranks every detection by its distance from the image centre
// and keeps the closest few per marker, so a surveyor only has to inspect
// the frames where the marker is most likely to be fully visible.
package picker

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/openaerial/gcptools/internal/monitoring"
)

// Detection is one marker sighting in one image. Fields holds the raw
// input columns so output rows round-trip byte for byte; rows from the
// 7-column format carry their GPS columns through untouched.
type Detection struct {
	ImageID  string
	MarkerID string
	PixelX   float64
	PixelY   float64
	Fields   []string
}

// Frame is the constant image geometry for a run.
type Frame struct {
	Width  int
	Height int
}

// NewFrame validates the image dimensions.
func NewFrame(width, height int) (Frame, error) {
	if width <= 0 || height <= 0 {
		return Frame{}, fmt.Errorf("image dimensions must be positive, got %dx%d", width, height)
	}
	return Frame{Width: width, Height: height}, nil
}

// Center returns the pixel coordinates of the frame centre.
func (f Frame) Center() (x, y float64) {
	return float64(f.Width) / 2, float64(f.Height) / 2
}

// Ranked is a Detection with its distance from the frame centre.
type Ranked struct {
	Detection
	Distance float64
}

// Column layouts accepted by ParseDetections. The 7-column layout adds
// latitude, longitude and altitude after the pixel coordinates; the
// ranking itself never reads them.
const (
	narrowColumns = 4
	wideColumns   = 7
)

// ParseDetections reads the space-delimited detection table. Rows with an
// unexpected column count or non-numeric pixel coordinates are reported
// and skipped; blank lines are ignored.
func ParseDetections(r io.Reader) ([]Detection, error) {
	var dets []Detection

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != narrowColumns && len(fields) != wideColumns {
			monitoring.Warnf("line %d: expected %d or %d columns, got %d; row skipped",
				line, narrowColumns, wideColumns, len(fields))
			continue
		}

		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			monitoring.Warnf("line %d: bad pixel x %q; row skipped", line, fields[2])
			continue
		}
		y, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			monitoring.Warnf("line %d: bad pixel y %q; row skipped", line, fields[3])
			continue
		}

		dets = append(dets, Detection{
			ImageID:  fields[0],
			MarkerID: fields[1],
			PixelX:   x,
			PixelY:   y,
			Fields:   fields,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read detections: %w", err)
	}
	return dets, nil
}

// Rank groups detections by marker, orders each group by distance from
// the frame centre, and keeps the first n per group. n <= 0 keeps every
// detection. Marker groups appear in first-seen order; equal distances
// keep their input order.
func Rank(dets []Detection, frame Frame, n int) []Ranked {
	cx, cy := frame.Center()

	groups := make(map[string][]Ranked)
	var order []string
	for _, d := range dets {
		if _, seen := groups[d.MarkerID]; !seen {
			order = append(order, d.MarkerID)
		}
		groups[d.MarkerID] = append(groups[d.MarkerID], Ranked{
			Detection: d,
			Distance:  math.Hypot(d.PixelX-cx, d.PixelY-cy),
		})
	}

	var out []Ranked
	for _, marker := range order {
		group := groups[marker]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Distance < group[j].Distance
		})
		if n > 0 && len(group) > n {
			group = group[:n]
		}
		out = append(out, group...)
	}
	return out
}

// WriteRanked writes ranked rows as the input columns with the computed
// distance appended.
func WriteRanked(w io.Writer, rows []Ranked) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%s %.2f\n", strings.Join(r.Fields, " "), r.Distance); err != nil {
			return fmt.Errorf("failed to write ranked row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush ranked rows: %w", err)
	}
	return nil
}
