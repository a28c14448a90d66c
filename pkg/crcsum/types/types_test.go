package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplayMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DisplayMode
		wantErr bool
	}{
		{name: "empty defaults to canonical", input: "", want: Canonical},
		{name: "canonical", input: "canonical", want: Canonical},
		{name: "local", input: "local", want: Local},
		{name: "mixed case with spaces", input: "  Local ", want: Local},
		{name: "unknown", input: "relative", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDisplayMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeStrings(t *testing.T) {
	assert.Equal(t, "flat", Flat.String())
	assert.Equal(t, "recursive", Recursive.String())
	assert.Equal(t, "unknown", DepthMode(9).String())
	assert.Equal(t, "canonical", Canonical.String())
	assert.Equal(t, "local", Local.String())
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.input))
	}
}

func TestSummaryThroughput(t *testing.T) {
	s := Summary{Bytes: 2048, Elapsed: time.Second}
	assert.Equal(t, "2.0 KiB/s", s.Throughput())
	assert.Equal(t, "2.0 KiB", s.HumanBytes())

	assert.Equal(t, "n/a", Summary{Bytes: 10}.Throughput())
}
