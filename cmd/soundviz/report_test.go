package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePDFPath(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		plotDir string
		want    string
	}{
		{
			name:    "default location",
			output:  "",
			plotDir: "./plots",
			want:    filepath.Join("./plots", defaultReport),
		},
		{
			name:   "extension appended",
			output: "report",
			want:   "report.pdf",
		},
		{
			name:   "extension preserved",
			output: "report.pdf",
			want:   "report.pdf",
		},
		{
			name:   "extension case-insensitive",
			output: "report.PDF",
			want:   "report.PDF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolvePDFPath(tt.output, tt.plotDir))
		})
	}
}

func TestReportCmdFlags(t *testing.T) {
	cmd := reportCmd()

	input, err := cmd.Flags().GetString("input")
	require.NoError(t, err)
	assert.Equal(t, defaultLogPath, input)

	plotDir, err := cmd.Flags().GetString("plot-dir")
	require.NoError(t, err)
	assert.Equal(t, defaultPlotDir, plotDir)

	for _, name := range []string{"output", "cores", "batch-size", "save-history", "db"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestRunsCmdFlags(t *testing.T) {
	cmd := runsCmd()

	limit, err := cmd.Flags().GetInt("limit")
	require.NoError(t, err)
	assert.Equal(t, 10, limit)
}
