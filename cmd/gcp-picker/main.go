// Command gcp-picker selects the most representative images for each
// ground-control marker, so a surveyor inspects a handful of frames per
// marker instead of the whole flight. Detections closest to the image
// centre rank first.
//
// Usage:
//
//	gcp-picker -i detections.txt -w 6000 -l 4000 -n 10
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/openaerial/gcptools/internal/config"
	"github.com/openaerial/gcptools/internal/fsutil"
	"github.com/openaerial/gcptools/internal/monitoring"
	"github.com/openaerial/gcptools/internal/picker"
	"github.com/openaerial/gcptools/internal/version"
)

type options struct {
	input        string
	width        int
	height       int
	perMarker    int
	perMarkerSet bool
	output       string
	defaultsPath string
}

func main() {
	opt, showVersion := parseFlags(os.Args[1:])
	if showVersion {
		fmt.Println("gcp-picker", version.String())
		return
	}
	if err := run(opt, fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("gcp-picker: %v", err)
	}
}

func parseFlags(args []string) (options, bool) {
	opt := options{}
	fl := flag.NewFlagSet("gcp-picker", flag.ExitOnError)
	showVersion := fl.Bool("version", false, "print version and exit")

	fl.StringVar(&opt.input, "i", "", "path to the marker detection table (required)")
	fl.IntVar(&opt.width, "w", 0, "image width in pixels (required)")
	fl.IntVar(&opt.height, "l", 0, "image height in pixels (required)")
	fl.IntVar(&opt.perMarker, "n", config.DefaultImagesPerMarker, "images to keep per marker (0 keeps all)")
	fl.StringVar(&opt.output, "o", "", "output path (default "+config.DefaultPickerOutput+")")
	fl.StringVar(&opt.defaultsPath, "defaults", "", "optional JSON defaults override file")

	fl.Parse(args)

	// An explicit -n wins over any defaults file value.
	fl.Visit(func(f *flag.Flag) {
		if f.Name == "n" {
			opt.perMarkerSet = true
		}
	})

	return opt, *showVersion
}

func run(opt options, fs fsutil.FileSystem) error {
	monitoring.ResetWarnings()

	if opt.input == "" {
		return errors.New("detection table is required (-i)")
	}
	frame, err := picker.NewFrame(opt.width, opt.height)
	if err != nil {
		return fmt.Errorf("%v (-w, -l)", err)
	}

	defaults, err := config.Load(opt.defaultsPath)
	if err != nil {
		return err
	}
	perMarker := opt.perMarker
	if !opt.perMarkerSet {
		perMarker = defaults.GetImagesPerMarker()
	}
	if perMarker < 0 {
		return fmt.Errorf("images per marker must be non-negative, got %d", perMarker)
	}
	output := opt.output
	if output == "" {
		output = defaults.GetPickerOutput()
	}

	in, err := fs.Open(opt.input)
	if err != nil {
		return fmt.Errorf("failed to open detection table: %w", err)
	}
	defer in.Close()

	dets, err := picker.ParseDetections(in)
	if err != nil {
		return err
	}

	ranked := picker.Rank(dets, frame, perMarker)

	out, err := fs.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := picker.WriteRanked(out, ranked); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	monitoring.Logf("selected %d of %d detections -> %s", len(ranked), len(dets), output)
	if n := monitoring.Warnings(); n > 0 {
		monitoring.Logf("%d malformed rows skipped", n)
	}
	return nil
}
