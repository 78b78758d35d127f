// Package mapper assigns surveyed ground-control points to the ArUco
// markers observed in geotagged imagery. Both sides are projected into a
// single UTM zone and each GCP takes its nearest observation within a
// distance threshold.
//
// Matching is greedy and per-GCP independent: two GCPs may claim the same
// observation, and no globally optimal one-to-one assignment is attempted.
// That matches how the field workflow has always behaved and keeps the
// results easy to reason about when a site has sparse markers.
package mapper

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/openaerial/gcptools/internal/exifgps"
	"github.com/openaerial/gcptools/internal/geo"
	"github.com/openaerial/gcptools/internal/monitoring"
)

// GCP is one surveyed reference point.
type GCP struct {
	CustomID string
	Lat      float64
	Lon      float64
}

// Mapping pairs a GCP with its nearest marker observation.
type Mapping struct {
	CustomID string
	MarkerID string
	File     string
	Distance float64
}

// Result is the outcome of a matching run. Unmapped lists the custom IDs
// of GCPs whose nearest observation sat beyond the threshold (or that had
// no observation at all).
type Result struct {
	Mappings []Mapping
	Unmapped []string
}

// ParseGCPs reads the space-delimited reference file: custom_id, latitude,
// longitude per row. Extra trailing columns (altitude and the like) are
// ignored; malformed rows are reported and skipped.
func ParseGCPs(r io.Reader) ([]GCP, error) {
	var gcps []GCP

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			monitoring.Warnf("line %d: expected custom_id latitude longitude, got %d columns; row skipped",
				line, len(fields))
			continue
		}

		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			monitoring.Warnf("line %d: bad latitude %q; row skipped", line, fields[1])
			continue
		}
		lon, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			monitoring.Warnf("line %d: bad longitude %q; row skipped", line, fields[2])
			continue
		}

		gcps = append(gcps, GCP{CustomID: fields[0], Lat: lat, Lon: lon})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read GCP file: %w", err)
	}
	return gcps, nil
}

// projected is an observation with planar coordinates attached.
type projected struct {
	exifgps.Observation
	point geo.Point
}

// Match assigns each GCP to its nearest observation within maxDist metres
// in the given UTM zone. Records that fail projection are reported and
// dropped; a bad zone or threshold is a configuration error and fails the
// whole run.
func Match(gcps []GCP, obs []exifgps.Observation, zone int, maxDist float64) (Result, error) {
	if !geo.ValidZone(zone) {
		return Result{}, fmt.Errorf("utm zone must be 1..60, got %d", zone)
	}
	if maxDist <= 0 {
		return Result{}, fmt.Errorf("max distance must be positive, got %f", maxDist)
	}

	// Project observations once, preserving input order for tie-breaks.
	var markers []projected
	for _, o := range obs {
		p, err := geo.ProjectUTM(o.Lat, o.Lon, zone)
		if err != nil {
			monitoring.Warnf("marker %s (%s): %v; observation skipped", o.MarkerID, o.File, err)
			continue
		}
		markers = append(markers, projected{Observation: o, point: p})
	}

	var res Result
	for _, g := range gcps {
		p, err := geo.ProjectUTM(g.Lat, g.Lon, zone)
		if err != nil {
			monitoring.Warnf("gcp %s: %v; reference skipped", g.CustomID, err)
			continue
		}

		best := -1
		bestDist := 0.0
		for i, m := range markers {
			d := p.DistanceTo(m.point)
			// Strict less-than keeps the first observation on ties.
			if best < 0 || d < bestDist {
				best = i
				bestDist = d
			}
		}

		if best < 0 || bestDist > maxDist {
			res.Unmapped = append(res.Unmapped, g.CustomID)
			continue
		}
		res.Mappings = append(res.Mappings, Mapping{
			CustomID: g.CustomID,
			MarkerID: markers[best].MarkerID,
			File:     markers[best].File,
			Distance: bestDist,
		})
	}
	return res, nil
}

// WriteMappings writes mapping rows: custom_id, marker_id, distance in
// metres to two decimals.
func WriteMappings(w io.Writer, ms []Mapping) error {
	bw := bufio.NewWriter(w)
	for _, m := range ms {
		if _, err := fmt.Fprintf(bw, "%s %s %.2f\n", m.CustomID, m.MarkerID, m.Distance); err != nil {
			return fmt.Errorf("failed to write mapping row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush mapping rows: %w", err)
	}
	return nil
}

// Summary describes the matched distances of a run in one line.
func Summary(ms []Mapping) string {
	if len(ms) == 0 {
		return "0 gcps matched"
	}

	dists := make([]float64, len(ms))
	for i, m := range ms {
		dists[i] = m.Distance
	}
	return fmt.Sprintf("%d gcps matched (distance min %.2fm mean %.2fm max %.2fm)",
		len(ms), floats.Min(dists), stat.Mean(dists, nil), floats.Max(dists))
}
