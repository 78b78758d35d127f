// Command gcp-mapper pairs custom-labelled ground-control points with the
// ArUco markers found in geotagged survey imagery. Both sides are
// projected into one UTM zone and each GCP takes its nearest marker
// within a distance threshold; GCPs with no marker in range are reported
// on the log stream.
//
// Usage:
//
//	gcp-mapper -g gcps.txt -i ./imagery -z 11 -d 50
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/openaerial/gcptools/internal/config"
	"github.com/openaerial/gcptools/internal/exifgps"
	"github.com/openaerial/gcptools/internal/fsutil"
	"github.com/openaerial/gcptools/internal/geo"
	"github.com/openaerial/gcptools/internal/mapper"
	"github.com/openaerial/gcptools/internal/monitoring"
	"github.com/openaerial/gcptools/internal/plot"
	"github.com/openaerial/gcptools/internal/version"
)

type options struct {
	gcpFile      string
	imageryDir   string
	zone         int
	maxDist      float64
	maxDistSet   bool
	output       string
	plotPath     string
	defaultsPath string
}

func main() {
	opt, showVersion := parseFlags(os.Args[1:])
	if showVersion {
		fmt.Println("gcp-mapper", version.String())
		return
	}

	if opt.imageryDir == "" {
		log.Fatal("gcp-mapper: imagery directory is required (-i)")
	}
	info, err := os.Stat(opt.imageryDir)
	if err != nil {
		log.Fatalf("gcp-mapper: failed to read imagery directory: %v", err)
	}
	if !info.IsDir() {
		log.Fatalf("gcp-mapper: %s is not a directory", opt.imageryDir)
	}

	if err := run(opt, fsutil.OSFileSystem{}, os.DirFS(opt.imageryDir)); err != nil {
		log.Fatalf("gcp-mapper: %v", err)
	}
}

func parseFlags(args []string) (options, bool) {
	opt := options{}
	fl := flag.NewFlagSet("gcp-mapper", flag.ExitOnError)
	showVersion := fl.Bool("version", false, "print version and exit")

	fl.StringVar(&opt.gcpFile, "g", "", "path to the GCP reference file (required)")
	fl.StringVar(&opt.imageryDir, "i", "", "path to the geotagged imagery directory (required)")
	fl.IntVar(&opt.zone, "z", 0, "UTM zone of the survey site, 1..60 (required)")
	fl.Float64Var(&opt.maxDist, "d", config.DefaultMaxDistance, "match threshold in metres")
	fl.StringVar(&opt.output, "o", "", "output path (default "+config.DefaultMapperOutput+")")
	fl.StringVar(&opt.plotPath, "plot", "", "optional HTML scatter of the projected site")
	fl.StringVar(&opt.defaultsPath, "defaults", "", "optional JSON defaults override file")

	fl.Parse(args)

	// An explicit -d wins over any defaults file value.
	fl.Visit(func(f *flag.Flag) {
		if f.Name == "d" {
			opt.maxDistSet = true
		}
	})

	return opt, *showVersion
}

func run(opt options, filesys fsutil.FileSystem, imagery fs.FS) error {
	monitoring.ResetWarnings()

	if opt.gcpFile == "" {
		return errors.New("GCP reference file is required (-g)")
	}
	if opt.zone == 0 {
		return errors.New("UTM zone is required (-z)")
	}
	if !geo.ValidZone(opt.zone) {
		return fmt.Errorf("utm zone must be 1..60, got %d", opt.zone)
	}

	defaults, err := config.Load(opt.defaultsPath)
	if err != nil {
		return err
	}
	maxDist := opt.maxDist
	if !opt.maxDistSet {
		maxDist = defaults.GetMaxDistance()
	}
	if maxDist <= 0 {
		return fmt.Errorf("match threshold must be positive, got %g", maxDist)
	}
	output := opt.output
	if output == "" {
		output = defaults.GetMapperOutput()
	}

	in, err := filesys.Open(opt.gcpFile)
	if err != nil {
		return fmt.Errorf("failed to open GCP file: %w", err)
	}
	defer in.Close()

	gcps, err := mapper.ParseGCPs(in)
	if err != nil {
		return err
	}
	if len(gcps) == 0 {
		return fmt.Errorf("no usable GCP rows in %s", opt.gcpFile)
	}

	obs, err := exifgps.ScanDir(imagery)
	if err != nil {
		return err
	}
	monitoring.Logf("loaded %d gcps, %d geotagged marker observations", len(gcps), len(obs))

	res, err := mapper.Match(gcps, obs, opt.zone, maxDist)
	if err != nil {
		return err
	}

	out, err := filesys.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := mapper.WriteMappings(out, res.Mappings); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	for _, id := range res.Unmapped {
		monitoring.Logf("gcp %s: no marker within %.0fm", id, maxDist)
	}
	monitoring.Logf("%s -> %s", mapper.Summary(res.Mappings), output)
	if n := monitoring.Warnings(); n > 0 {
		monitoring.Logf("%d records skipped", n)
	}

	if opt.plotPath != "" {
		if err := writePlot(opt, filesys, gcps, obs); err != nil {
			return err
		}
	}
	return nil
}

// writePlot renders the projected site to an HTML file. Records that fail
// projection were already reported during matching and are left out.
func writePlot(opt options, filesys fsutil.FileSystem, gcps []mapper.GCP, obs []exifgps.Observation) error {
	var gcpPts, markerPts []plot.LabelledPoint
	for _, g := range gcps {
		if p, err := geo.ProjectUTM(g.Lat, g.Lon, opt.zone); err == nil {
			gcpPts = append(gcpPts, plot.LabelledPoint{Label: g.CustomID, Point: p})
		}
	}
	for _, o := range obs {
		if p, err := geo.ProjectUTM(o.Lat, o.Lon, opt.zone); err == nil {
			markerPts = append(markerPts, plot.LabelledPoint{Label: o.MarkerID, Point: p})
		}
	}

	f, err := filesys.Create(opt.plotPath)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	title := fmt.Sprintf("GCPs vs markers (zone %d)", opt.zone)
	if err := plot.Scatter(f, title, gcpPts, markerPts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close plot file: %w", err)
	}
	monitoring.Logf("site plot -> %s", opt.plotPath)
	return nil
}
