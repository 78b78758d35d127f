package main

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaerial/gcptools/internal/fsutil"
	"github.com/openaerial/gcptools/internal/testutil"
)

func emptyImagery() fstest.MapFS {
	return fstest.MapFS{}
}

func TestRun_NoObservationsLeavesGCPsUnmapped(t *testing.T) {
	testutil.MuteLogs(t)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("gcps.txt", []byte("G1 34.05 -117.001\nG2 34.06 -117.002\n"), 0644))

	opt := options{
		gcpFile: "gcps.txt",
		zone:    11,
		output:  "matches.txt",
	}
	require.NoError(t, run(opt, mfs, emptyImagery()))

	data, err := mfs.ReadFile("matches.txt")
	require.NoError(t, err)
	assert.Empty(t, data, "no mappings should be written without observations")
}

func TestRun_MatchesGeotaggedImagery(t *testing.T) {
	testutil.MuteLogs(t)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("gcps.txt", []byte("G1 34.0500 -117.0010\n"), 0644))

	imagery := fstest.MapFS{
		"IMG_0231_A17.tif": {Data: testutil.GPSTIFF(34.05, -117.001)},
	}

	opt := options{
		gcpFile: "gcps.txt",
		zone:    11,
		output:  "matches.txt",
	}
	require.NoError(t, run(opt, mfs, imagery))

	data, err := mfs.ReadFile("matches.txt")
	require.NoError(t, err)
	assert.Equal(t, "G1 A17 0.00\n", string(data))
}

func TestRun_SkipsImagesWithoutEXIF(t *testing.T) {
	testutil.MuteLogs(t)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("gcps.txt", []byte("G1 34.05 -117.001\n"), 0644))

	imagery := fstest.MapFS{
		"IMG_0001_A1.jpg": {Data: []byte("not a jpeg")},
		"notes.txt":       {Data: []byte("field notes")},
	}

	opt := options{
		gcpFile: "gcps.txt",
		zone:    11,
		maxDist: 50,
		output:  "matches.txt",
	}
	require.NoError(t, run(opt, mfs, imagery))

	data, err := mfs.ReadFile("matches.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRun_ConfigurationErrors(t *testing.T) {
	testutil.MuteLogs(t)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("gcps.txt", []byte("G1 34.05 -117.001\n"), 0644))

	tests := []struct {
		name string
		opt  options
	}{
		{"missing gcp file flag", options{zone: 11, maxDist: 50}},
		{"missing zone", options{gcpFile: "gcps.txt", maxDist: 50}},
		{"zone out of range", options{gcpFile: "gcps.txt", zone: 61, maxDist: 50}},
		{"bad threshold", options{gcpFile: "gcps.txt", zone: 11, maxDist: -3, maxDistSet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertError(t, run(tt.opt, mfs, emptyImagery()))
		})
	}
}

func TestRun_MissingGCPFile(t *testing.T) {
	testutil.MuteLogs(t)

	opt := options{gcpFile: "nope.txt", zone: 11, maxDist: 50}
	err := run(opt, fsutil.NewMemoryFileSystem(), emptyImagery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestRun_NoUsableGCPRows(t *testing.T) {
	testutil.MuteLogs(t)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("gcps.txt", []byte("G1 notanumber -117\n"), 0644))

	opt := options{gcpFile: "gcps.txt", zone: 11, maxDist: 50}
	err := run(opt, mfs, emptyImagery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable GCP rows")
}

func TestRun_WritesSitePlot(t *testing.T) {
	testutil.MuteLogs(t)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("gcps.txt", []byte("G1 34.05 -117.001\n"), 0644))

	opt := options{
		gcpFile:  "gcps.txt",
		zone:     11,
		maxDist:  50,
		output:   "matches.txt",
		plotPath: "site.html",
	}
	require.NoError(t, run(opt, mfs, emptyImagery()))

	data, err := mfs.ReadFile("site.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "GCPs vs markers (zone 11)")
}

func TestParseFlags_Defaults(t *testing.T) {
	opt, showVersion := parseFlags([]string{"-g", "gcps.txt", "-i", "./imagery", "-z", "11"})
	assert.False(t, showVersion)
	assert.Equal(t, 50.0, opt.maxDist)
	assert.False(t, opt.maxDistSet)
}

func TestParseFlags_ExplicitThreshold(t *testing.T) {
	opt, _ := parseFlags([]string{"-g", "gcps.txt", "-i", "./imagery", "-z", "11", "-d", "25"})
	assert.Equal(t, 25.0, opt.maxDist)
	assert.True(t, opt.maxDistSet)
}
